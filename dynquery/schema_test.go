package dynquery_test

import (
	"context"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/catalog/dynquery"
)

func TestNewSchema_RejectsDuplicates(t *testing.T) {
	_, err := dynquery.NewSchema(
		dynquery.Text("title", "title", func(l listing) string { return l.Title }),
		dynquery.Text("Title", "title2", func(l listing) string { return l.Title }),
	)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, dynquery.CodeInvalidSchema))
}

func TestNewSchema_RejectsReservedNames(t *testing.T) {
	for _, name := range []string{"", " ", "none"} {
		_, err := dynquery.NewSchema(dynquery.Opaque[listing](name, "x"))
		assert.Error(t, err, "name %q", name)
	}
}

func TestSchema_Lookup(t *testing.T) {
	f, err := listingSchema.Lookup(" Price ")
	require.NoError(t, err)
	assert.Equal(t, "price", f.Name())
	assert.Equal(t, "price", f.Column())
	assert.Equal(t, dynquery.KindFloat, f.Kind())

	_, err = listingSchema.Lookup("missing")
	assert.True(t, errx.IsCodeIn(err, dynquery.CodeFieldNotFound))
}

func TestSchema_Names(t *testing.T) {
	assert.Equal(t,
		[]string{"id", "title", "price", "rooms", "furnished", "createdAt", "photos"},
		listingSchema.Names(),
	)
}

func TestSelector_IsNone(t *testing.T) {
	assert.True(t, dynquery.None.IsNone())
	assert.True(t, dynquery.Selector("NONE").IsNone())
	assert.True(t, dynquery.Selector("  ").IsNone())
	assert.False(t, dynquery.Selector("title").IsNone())
}

func TestSliceSource_WindowAndCount(t *testing.T) {
	ctx := context.Background()
	src := dynquery.NewSliceSource(fixtures()).Window(1, 2)

	items, err := src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(items))

	n, err := src.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	items, err = src.Window(10, 2).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSliceSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dynquery.NewSliceSource(fixtures()).List(ctx)
	assert.Error(t, err)
}
