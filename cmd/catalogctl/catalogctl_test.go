package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/catalog/catalog"
	"github.com/rise-and-shine/catalog/dynquery"
	"github.com/rise-and-shine/catalog/pagination"
)

func TestListFlags_Params(t *testing.T) {
	fields := catalog.HousingSchema.Names()

	f := &listFlags{search: "villa", searchBy: "name", sort: "PRICE_PER_NIGHT:desc", page: 2, perPage: 5}
	p := f.params(fields)
	assert.Equal(t, "villa", p.SearchString)
	assert.Equal(t, dynquery.Selector("name"), p.SearchBy)
	assert.Equal(t, dynquery.Selector("price_per_night"), p.SortBy)
	assert.True(t, p.SortDescending)
	assert.Equal(t, 2, p.PageNumber)
	assert.Equal(t, 5, p.ItemsOnPage)

	f = &listFlags{sort: "stars:desc", page: 1, perPage: 10, all: true}
	p = f.params(fields)
	assert.Equal(t, dynquery.Selector("stars"), p.SortBy)
	assert.Equal(t, pagination.AllItems, p.ItemsOnPage)
}

const testConfig = `
storage: memory
logger:
  level: error
  encoding: json
tracing:
  disable: true
cache:
  driver: memory
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(testConfig), 0o600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-dir", dir, "--env", "test"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestHousingsList(t *testing.T) {
	out, err := run(t, "housings", "list", "--sort", "price_per_night:desc", "--per-page", "2")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[1], "Yunusabad family villa")
	assert.Contains(t, lines[2], "Registan view hotel")
	assert.Contains(t, out, "page 1 of 2, 4 total")
}

func TestHousingsList_Direct(t *testing.T) {
	out, err := run(t, "housings", "list", "--direct", "--search", "GUEST")
	require.NoError(t, err)
	assert.Contains(t, out, "Lyabi-Hauz guest house")
	assert.Contains(t, out, "1 total")
}

func TestHousingsList_UnknownField(t *testing.T) {
	out, err := run(t, "housings", "list", "--sort", "stars")
	require.Error(t, err)
	assert.Contains(t, out, dynquery.CodeFieldNotFound)
}

func TestRegionsList(t *testing.T) {
	out, err := run(t, "regions", "list", "--all", "--sort", "code")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "bukhara"), strings.Index(out, "tashkent"))
}

func TestSeed_MemoryIsNoop(t *testing.T) {
	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}
