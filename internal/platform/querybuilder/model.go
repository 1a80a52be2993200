package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

type modelField struct {
	column string
	index  int
}

var modelFieldCache sync.Map // reflect.Type -> []modelField

// InsertModel builds a single-row insert from the db tags of model. conflict
// may be nil.
func InsertModel(table string, model any, conflict *Conflict) (string, []any, error) {
	value, fields, err := inspectModel(model)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, len(fields))
	vals := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = f.column
		vals[i] = value.Field(f.index).Interface()
	}
	return InsertInto(table).Columns(cols...).Values(vals...).OnConflict(conflict).ToSQL()
}

// Columns lists the db-tagged columns of model in field order, minus exclude.
func Columns(model any, exclude ...string) ([]string, error) {
	_, fields, err := inspectModel(model)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if !slices.Contains(exclude, f.column) {
			cols = append(cols, f.column)
		}
	}
	return cols, nil
}

func inspectModel(model any) (reflect.Value, []modelField, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, nil, errors.New("querybuilder: nil model")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("querybuilder: model must be a struct, got %s", value.Kind())
	}

	typ := value.Type()
	if cached, ok := modelFieldCache.Load(typ); ok {
		return value, cached.([]modelField), nil
	}

	var fields []modelField
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, modelField{column: column, index: i})
	}
	if len(fields) == 0 {
		return reflect.Value{}, nil, fmt.Errorf("querybuilder: %s has no db columns", typ)
	}

	modelFieldCache.Store(typ, fields)
	return value, fields, nil
}
