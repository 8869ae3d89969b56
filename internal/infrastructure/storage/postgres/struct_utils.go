package postgres

import (
	"reflect"
	"sync"
)

// writeOnceColumns are set on insert and never rewritten by an UPDATE.
var writeOnceColumns = map[string]bool{
	"id":         true,
	"version":    true,
	"created_at": true,
	"created_by": true,
}

// column is one "db"-tagged field, addressed through embedded structs.
type column struct {
	name  string
	index []int
}

// rowPlans caches the flattened column list per struct type.
var rowPlans sync.Map // map[reflect.Type][]column

func planFor(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := rowPlans.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		cols = collectColumns(t, nil)
	}
	rowPlans.Store(t, cols)
	return cols
}

// collectColumns walks t in field order; embedded structs
// (entity.Catalog, entity.BaseEntity) contribute their columns in place.
func collectColumns(t reflect.Type, prefix []int) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			cols = append(cols, collectColumns(field.Type, index)...)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{name: tag, index: index})
	}
	return cols
}

// ExtractDBColumns returns the "db" tag names of T in field order.
//
//	columns := ExtractDBColumns[ledger.Movement]()
//	// ["id", "position_id", "operation", "weight", ...]
func ExtractDBColumns[T any]() []string {
	plan := planFor(reflect.TypeOf((*T)(nil)).Elem())
	names := make([]string, len(plan))
	for i, c := range plan {
		names[i] = c.name
	}
	return names
}

// StructToMap maps every "db"-tagged field of v to its value, as used by
// INSERT ... SetMap.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	plan := planFor(rv.Type())
	res := make(map[string]any, len(plan))
	for _, c := range plan {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}

// UpdateMap is StructToMap without the write-once columns.
func UpdateMap(v any) map[string]any {
	res := StructToMap(v)
	for name := range writeOnceColumns {
		delete(res, name)
	}
	return res
}
