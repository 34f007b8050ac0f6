package shared

import (
	"reflect"
	"strings"
	"todolist/shared/dto"
)

const cacheKeySeparator = ":"

// BuildCacheKey joins the non-empty parts with ':'.
func BuildCacheKey(parts ...string) string {
	keys := make([]string, 0, len(parts))

	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, part)
		}
	}

	return strings.Join(keys, cacheKeySeparator)
}

// TransformFields converts the non-zero, non-generated `db` fields of a struct into a map
// of column to value, ready for an UPDATE statement. A `column` tag overrides the name.
func TransformFields(data any) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		structField := typ.Field(index)

		fieldName := structField.Tag.Get("db")
		if fieldName == "" || fieldName == "-" || structField.Tag.Get("generated") == "true" {
			continue
		}

		if column := structField.Tag.Get("column"); column != "" {
			fieldName = column
		}

		updatedFields[fieldName] = field.Interface()
	}

	return updatedFields
}

func FilterByID(id any, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterByRange matches rows where start <= field <= end.
func FilterByRange(field, table string, start, end any) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{
				ArgName:  field + "_start",
				Field:    field,
				Value:    start,
				Operator: dto.FilterOperatorGreaterEq,
				Table:    table,
			},
			dto.Filter{
				ArgName:  field + "_end",
				Field:    field,
				Value:    end,
				Operator: dto.FilterOperatorLessEq,
				Table:    table,
			},
		},
	}
}

// FilterContains matches rows whose field contains value, ignoring case.
func FilterContains(field, table, value string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    field,
				Value:    value,
				Operator: dto.FilterOperatorLike,
				Table:    table,
			},
		},
	}
}
