package dto_test

import (
	"testing"
	"time"
	"todolist/shared/dto"

	"github.com/stretchr/testify/assert"
)

func TestFilter_GetWhereClause(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		filter       dto.Filter
		expectedSQL  string
		expectedArgs map[string]any
	}{
		{
			name:         "equal with table",
			filter:       dto.Filter{Field: "id", Value: int64(4), Operator: dto.FilterOperatorEq, Table: "todo"},
			expectedSQL:  "todo.id = :id",
			expectedArgs: map[string]any{"id": int64(4)},
		},
		{
			name:         "like wraps value in wildcards",
			filter:       dto.Filter{Field: "title", Value: "test", Operator: dto.FilterOperatorLike},
			expectedSQL:  "LOWER(title) LIKE LOWER(:title) ESCAPE '!'",
			expectedArgs: map[string]any{"title": "%test%"},
		},
		{
			name:         "like escapes wildcards",
			filter:       dto.Filter{Field: "title", Value: "50%_off!", Operator: dto.FilterOperatorLike},
			expectedSQL:  "LOWER(title) LIKE LOWER(:title) ESCAPE '!'",
			expectedArgs: map[string]any{"title": "%50!%!_off!!%"},
		},
		{
			name:         "greater or equal with custom arg name",
			filter:       dto.Filter{ArgName: "start", Field: "taskDate", Value: start, Operator: dto.FilterOperatorGreaterEq, Table: "todo"},
			expectedSQL:  "todo.taskDate >= :start",
			expectedArgs: map[string]any{"start": start},
		},
		{
			name:         "less or equal",
			filter:       dto.Filter{ArgName: "end", Field: "taskDate", Value: start, Operator: dto.FilterOperatorLessEq},
			expectedSQL:  "taskDate <= :end",
			expectedArgs: map[string]any{"end": start},
		},
		{
			name:         "unknown operator",
			filter:       dto.Filter{Field: "title", Value: "x", Operator: "regex"},
			expectedSQL:  "",
			expectedArgs: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.expectedSQL, where)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{ArgName: "start", Field: "taskDate", Value: "a", Operator: dto.FilterOperatorGreaterEq},
			dto.Filter{ArgName: "end", Field: "taskDate", Value: "b", Operator: dto.FilterOperatorLessEq},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{Field: "title", Value: "x", Operator: dto.FilterOperatorEq},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(taskDate >= :start AND taskDate <= :end AND (title = :title))", where)
	assert.Equal(t, map[string]any{"start": "a", "end": "b", "title": "x"}, args)
}

func TestFilterGroup_Empty(t *testing.T) {
	group := dto.FilterGroup{}

	where, args := group.GetWhereClause()

	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", dto.EscapeLike("plain"))
	assert.Equal(t, "100!%", dto.EscapeLike("100%"))
	assert.Equal(t, "a!_b", dto.EscapeLike("a_b"))
	assert.Equal(t, "wow!!", dto.EscapeLike("wow!"))
}
