package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"metalstock/internal/core/entity"
	"metalstock/internal/core/id"
)

type mockCatalog struct {
	entity.Catalog
	Unit    string `db:"unit" json:"unit"`
	Ignored string `db:"-"`
	NoTag   string
}

func TestExtractDBColumns_EmbeddedFields(t *testing.T) {
	cols := ExtractDBColumns[mockCatalog]()

	assert.Equal(t, []string{
		"id", "version", "created_at", "updated_at", "name", "is_active", "unit",
	}, cols)
}

func TestStructToMap_EmbeddedFields(t *testing.T) {
	cat := mockCatalog{
		Catalog: entity.NewCatalog("  Резка  "),
		Unit:    "рез",
	}
	cat.Version = 5

	m := StructToMap(&cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "Резка", m["name"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, "рез", m["unit"])
	assert.NotContains(t, m, "Ignored")
	assert.Len(t, m, 7)
	assert.False(t, id.IsNil(m["id"].(id.ID)))
}

type mockMovement struct {
	ID        id.ID   `db:"id"`
	Weight    string  `db:"weight"`
	CreatedBy *string `db:"created_by"`
}

func TestUpdateMap_DropsWriteOnceColumns(t *testing.T) {
	cat := mockCatalog{Catalog: entity.NewCatalog("Труба"), Unit: "т"}

	m := UpdateMap(&cat)

	assert.Equal(t, map[string]any{
		"updated_at": cat.UpdatedAt,
		"name":       "Труба",
		"is_active":  true,
		"unit":       "т",
	}, m)

	author := "u-1"
	assert.Equal(t, map[string]any{"weight": "1.000"}, UpdateMap(mockMovement{ID: id.New(), Weight: "1.000", CreatedBy: &author}))
}

func TestStructToMap_NonStruct(t *testing.T) {
	var nilCatalog *mockCatalog

	assert.Nil(t, StructToMap(nilCatalog))
	assert.Nil(t, StructToMap(42))
	assert.Empty(t, ExtractDBColumns[int]())
}
