package mask_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/rise-and-shine/catalog/mask"
)

func keys(om *orderedmap.OrderedMap[string, any]) []string {
	var out []string
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func get(t *testing.T, om *orderedmap.OrderedMap[string, any], key string) any {
	t.Helper()
	v, ok := om.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestStructToOrdMap_NilInput(t *testing.T) {
	assert.Nil(t, mask.StructToOrdMap(nil))
}

func TestStructToOrdMap_MasksTaggedFields(t *testing.T) {
	type request struct {
		Title    string
		Password string  `mask:"true"`
		Pin      int     `mask:"1"`
		Ratio    float64 `mask:"true"`
		Tags     []string `mask:"true"`
		Plain    string   `mask:"false"`
	}

	om := mask.StructToOrdMap(request{
		Title:    "Housing1",
		Password: "secret",
		Pin:      1234,
		Ratio:    0.5,
		Tags:     []string{"a"},
		Plain:    "visible",
	})

	assert.Equal(t, "Housing1", get(t, om, "Title"))
	assert.Equal(t, "***masked-string***", get(t, om, "Password"))
	assert.Equal(t, "***masked-int***", get(t, om, "Pin"))
	assert.Equal(t, "***masked-float***", get(t, om, "Ratio"))
	assert.Equal(t, "***masked-slice***", get(t, om, "Tags"))
	assert.Equal(t, "visible", get(t, om, "Plain"))
}

func TestStructToOrdMap_ZeroValuesStayVisible(t *testing.T) {
	type request struct {
		Password string   `mask:"true"`
		Token    *string  `mask:"true"`
		Scopes   []string `mask:"true"`
	}

	om := mask.StructToOrdMap(request{})

	assert.Empty(t, get(t, om, "Password"))
	assert.Nil(t, get(t, om, "Token"))
	assert.Nil(t, get(t, om, "Scopes"))
}

func TestStructToOrdMap_TagNamesAndOrder(t *testing.T) {
	type request struct {
		SearchString string `json:"search_string,omitempty"`
		SortBy       string `yaml:"sort_by"`
		Hidden       string `json:"-"`
		PageNumber   int
	}

	om := mask.StructToOrdMap(&request{SearchString: "a", SortBy: "title", Hidden: "x", PageNumber: 2})

	assert.Equal(t, []string{"search_string", "sort_by", "PageNumber"}, keys(om))
}

func TestStructToOrdMap_FlattensNestedStructs(t *testing.T) {
	type address struct {
		City   string `json:"city"`
		Street string `json:"street" mask:"true"`
	}
	type request struct {
		Name    string    `json:"name"`
		Address *address  `json:"address"`
		Other   *address  `json:"other"`
		At      time.Time `json:"at"`
	}

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	om := mask.StructToOrdMap(request{
		Name:    "n",
		Address: &address{City: "Tashkent", Street: "Amir Temur"},
		At:      at,
	})

	assert.Equal(t, []string{"name", "address.city", "address.street", "other", "at"}, keys(om))
	assert.Equal(t, "Tashkent", get(t, om, "address.city"))
	assert.Equal(t, "***masked-string***", get(t, om, "address.street"))
	assert.Nil(t, get(t, om, "other"))
	assert.Equal(t, at, get(t, om, "at"))
}

func TestStructToOrdMap_NonStruct(t *testing.T) {
	om := mask.StructToOrdMap(42)
	assert.Equal(t, 42, get(t, om, ""))
}

func TestStructToOrdMap_SkipsUnexported(t *testing.T) {
	type request struct {
		Visible string
		hidden  string
	}

	om := mask.StructToOrdMap(request{Visible: "v", hidden: "h"})
	assert.Equal(t, []string{"Visible"}, keys(om))
}

type node struct {
	Name string
	Next *node
}

func TestStructToOrdMap_CycleIsNotFollowed(t *testing.T) {
	a := &node{Name: "a"}
	b := &node{Name: "b", Next: a}
	a.Next = b

	om := mask.StructToOrdMap(a)

	assert.Equal(t, []string{"Name", "Next.Name", "Next.Next"}, keys(om))
	assert.Equal(t, "b", get(t, om, "Next.Name"))
	assert.Equal(t, "***cycle***", get(t, om, "Next.Next"))
}

func TestStructToOrdMap_SharedPointerIsNotACycle(t *testing.T) {
	type pair struct {
		Left  *node
		Right *node
	}
	shared := &node{Name: "shared"}

	om := mask.StructToOrdMap(pair{Left: shared, Right: shared})

	assert.Equal(t, "shared", get(t, om, "Left.Name"))
	assert.Equal(t, "shared", get(t, om, "Right.Name"))
}

func TestStructToOrdMap_DepthIsBounded(t *testing.T) {
	root := &node{Name: "0"}
	cur := root
	for range 40 {
		cur.Next = &node{Name: "n"}
		cur = cur.Next
	}

	om := mask.StructToOrdMap(root)

	var placeholders int
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == "***max-depth***" {
			placeholders++
		}
	}
	assert.Equal(t, 1, placeholders)
	assert.Less(t, om.Len(), 40)
}
