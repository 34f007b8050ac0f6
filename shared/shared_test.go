package shared_test

import (
	"reflect"
	"testing"
	"time"
	"todolist/shared"
	"todolist/shared/dto"
)

func TestBuildCacheKey(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{name: "joins parts", parts: []string{"limiter", "10.0.0.1", "curl/8.0"}, expected: "limiter:10.0.0.1:curl/8.0"},
		{name: "skips empty parts", parts: []string{"limiter", "", " ", "10.0.0.1"}, expected: "limiter:10.0.0.1"},
		{name: "trims parts", parts: []string{" limiter ", "ip "}, expected: "limiter:ip"},
		{name: "no parts", parts: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := shared.BuildCacheKey(tt.parts...); result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestTransformFields(t *testing.T) {
	type TestStruct struct {
		ID         int       `db:"id"          generated:"true"`
		Name       string    `db:"name"`
		Email      string    `db:"email"`
		EmptyField string    `db:"empty_field"`
		CreatedAt  time.Time `db:"created_at"  column:"createdAt"`
		NoDBTag    string
		IgnoredTag string `db:"-"`
	}

	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		data     any
		expected map[string]any
	}{
		{
			name: "struct with populated fields",
			data: TestStruct{
				ID:         1,
				Name:       "John Doe",
				Email:      "john@example.com",
				CreatedAt:  createdAt,
				NoDBTag:    "ignored",
				IgnoredTag: "ignored",
			},
			expected: map[string]any{
				"name":      "John Doe",
				"email":     "john@example.com",
				"createdAt": createdAt,
			},
		},
		{
			name:     "struct with all zero values",
			data:     TestStruct{},
			expected: map[string]any{},
		},
		{
			name:     "struct with partial fields",
			data:     TestStruct{Name: "Jane Doe"},
			expected: map[string]any{"name": "Jane Doe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.TransformFields(tt.data)

			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestTransformFieldsWithPointers(t *testing.T) {
	type TestStructWithPointers struct {
		Name  *string `db:"name"`
		Count *int    `db:"count"`
	}

	name := "John"
	count := 0

	result := shared.TransformFields(TestStructWithPointers{Name: &name, Count: &count})

	expected := map[string]any{
		"name":  &name,
		"count": &count,
	}

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("expected %v, got %v", expected, result)
	}
}

func TestFilterByID(t *testing.T) {
	result := shared.FilterByID(int64(123), "id", "todo")

	expected := dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    "id",
				Value:    int64(123),
				Operator: dto.FilterOperatorEq,
				Table:    "todo",
			},
		},
	}

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("expected %+v, got %+v", expected, result)
	}

	where, args := result.GetWhereClause()
	if where != "(todo.id = :id)" {
		t.Errorf("unexpected where clause %q", where)
	}

	if args["id"] != int64(123) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestFilterByRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	result := shared.FilterByRange("taskDate", "todo", start, end)

	where, args := result.GetWhereClause()

	if where != "(todo.taskDate >= :taskDate_start AND todo.taskDate <= :taskDate_end)" {
		t.Errorf("unexpected where clause %q", where)
	}

	if args["taskDate_start"] != start || args["taskDate_end"] != end {
		t.Errorf("unexpected args %v", args)
	}
}

func TestFilterContains(t *testing.T) {
	result := shared.FilterContains("title", "todo", "50%_off")

	where, args := result.GetWhereClause()

	if where != "(LOWER(todo.title) LIKE LOWER(:title) ESCAPE '!')" {
		t.Errorf("unexpected where clause %q", where)
	}

	if args["title"] != "%50!%!_off%" {
		t.Errorf("unexpected args %v", args)
	}
}
