package bunrepo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/rise-and-shine/catalog/dynquery"
	"github.com/rise-and-shine/catalog/repository"
)

type listing struct {
	bun.BaseModel `bun:"table:listings,alias:l"`

	ID    string  `bun:"id,pk,type:uuid"`
	Title string  `bun:"title"`
	Price float64 `bun:"price"`
}

func (l *listing) GetID() string { return l.ID }

//nolint:gochecknoglobals // test schema
var listingSchema = dynquery.MustSchema(
	dynquery.Text("title", "title", func(l *listing) string { return l.Title }),
	dynquery.Float("price", "price", func(l *listing) float64 { return l.Price }),
)

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func withSession(t *testing.T, db *bun.DB) (context.Context, repository.Session) {
	t.Helper()
	s, err := NewProvider(db).NewSession(context.Background())
	require.NoError(t, err)
	return repository.WithSession(context.Background(), s), s
}

func TestSource_RendersFilterSortAndWindow(t *testing.T) {
	db, _ := newMockDB(t)
	engine := dynquery.NewEngine(listingSchema)

	p := dynquery.NewParams()
	p.SearchBy = "Title"
	p.SearchString = "flat"
	p.SortBy = "price"
	p.SortDescending = true
	p.PageNumber = 2
	p.ItemsOnPage = 5

	built, err := engine.Build(newSource[*listing](db), p)
	require.NoError(t, err)

	var items []*listing
	sqlText := built.(source[*listing]).selectQuery(&items).String()

	assert.Contains(t, sqlText, `FROM "listings" AS "l"`)
	assert.Contains(t, sqlText, `WHERE ("l"."title" ILIKE '%flat%')`)
	assert.Contains(t, sqlText, `ORDER BY "l"."price" DESC`)
	assert.Contains(t, sqlText, `LIMIT 5`)
	assert.Contains(t, sqlText, `OFFSET 5`)
}

func TestSource_NoParamsHasNoClauses(t *testing.T) {
	db, _ := newMockDB(t)

	var items []*listing
	sqlText := newSource[*listing](db).selectQuery(&items).String()

	assert.NotContains(t, sqlText, "WHERE")
	assert.NotContains(t, sqlText, "ORDER BY")
	assert.NotContains(t, sqlText, "LIMIT")
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, likeEscaper.Replace(`50%_off\`))
}

func TestSource_ListAndCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepo[*listing, string](db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "l"."id", "l"."title", "l"."price" FROM "listings" AS "l"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price"}).
			AddRow("a", "Sunny flat", 300.0).
			AddRow("b", "Studio", 200.0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "listings" AS "l"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	resp, err := dynquery.NewEngine(listingSchema).Execute(ctx, repo.Query(ctx), dynquery.NewParams())
	require.NoError(t, err)
	require.Len(t, resp.PageContent, 2)
	assert.Equal(t, "Sunny flat", resp.PageContent[0].Title)
	assert.Equal(t, int64(2), resp.TotalCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChanges_WithoutTxRunsItsOwnTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepo[*listing, string](db)
	ctx, s := withSession(t, db)

	require.NoError(t, repo.Add(ctx, &listing{ID: "a", Title: "Sunny flat", Price: 300}))
	require.NoError(t, repo.Add(ctx, &listing{ID: "b", Title: "Studio", Price: 200}))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "listings"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "listings"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_CommitFlushesInsideTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepo[*listing, string](db)
	ctx, s := withSession(t, db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "listings"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := s.BeginTx(ctx, sql.LevelReadCommitted)
	require.NoError(t, err)

	again, err := s.BeginTx(ctx, sql.LevelReadCommitted)
	require.NoError(t, err)
	assert.Same(t, tx, again)

	require.NoError(t, repo.Add(ctx, &listing{ID: "a", Title: "Sunny flat"}))
	n, err := s.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_ConflictThenRollback(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepo(db, WithConflictCode[*listing, string]("listings_title_key", "LISTING_TITLE_TAKEN"))
	ctx, s := withSession(t, db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "listings"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "listings_title_key"})
	mock.ExpectRollback()

	tx, err := s.BeginTx(ctx, sql.LevelReadCommitted)
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, &listing{ID: "a", Title: "dup"}))

	_, err = s.SaveChanges(ctx)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, "LISTING_TITLE_TAKEN"))

	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_RollsBackOpenTx(t *testing.T) {
	db, mock := newMockDB(t)
	ctx, s := withSession(t, db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.BeginTx(ctx, sql.LevelReadCommitted)
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepo(db, WithNotFoundCode[*listing, string]("LISTING_NOT_FOUND"))

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ("l"."id" = 'missing') LIMIT 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price"}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errx.IsCodeIn(err, "LISTING_NOT_FOUND"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_WithoutSession(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewRepo[*listing, string](db)

	err := repo.Add(context.Background(), &listing{ID: "a"})
	assert.True(t, errx.IsCodeIn(err, repository.CodeNoSession))
}

func TestGetList_UnknownRelation(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewRepo[*listing, string](db)

	_, err := repo.GetList(context.Background(), repository.Include("owner"))
	assert.True(t, errx.IsCodeIn(err, repository.CodeUnknownRelation))
}
