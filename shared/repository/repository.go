package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"todolist/infras/database"
	"todolist/infras/otel"
	"todolist/shared/constant"
	"todolist/shared/dto"
	"todolist/shared/failure"
	"todolist/shared/logger"
)

var (
	errRequiredFilter = errors.New("required filter")
)

type column struct {
	name   string
	table  string
	alias  string
	insert bool
}

// arg is the named parameter bound to the column.
func (c column) arg() string {
	if c.alias != "" {
		return c.alias
	}

	return c.name
}

// Repository is a generic data mapper for one table. Struct fields are mapped through
// their `db` tag; `column` selects a differently named column under the `db` alias and
// `generated:"true"` keeps store-assigned columns out of INSERT statements.
type Repository[T any] struct {
	db            *database.Connection
	otel          otel.Otel
	table         string
	entitas       string
	primaryColumn string
	columns       []column
}

func NewRepository[T any](entitasName, tableName, primaryColumn string, dbConnection *database.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns := getColumns(tableName, reflect.TypeOf(zero))

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entitas:       entitasName,
		primaryColumn: primaryColumn,
		columns:       columns,
	}
}

// Insert stores model and returns the identifier assigned by the store.
func (repo *Repository[T]) Insert(ctx context.Context, model T) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Insert", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	insertColumns := []string{}
	placeholders := []string{}

	for _, col := range repo.columns {
		if !col.insert {
			continue
		}

		insertColumns = append(insertColumns, col.name)
		placeholders = append(placeholders, ":"+col.arg())
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", repo.table, strings.Join(insertColumns, ", "), strings.Join(placeholders, ", "))

	if repo.db.Write.DriverName() == constant.DriverMySQL {
		scope.SetAttribute(constant.OtelQueryAttributeKey, query)

		result, err := repo.db.Write.NamedExecContext(ctx, query, model)
		if err != nil {
			logger.ErrorWithStack(err)
			scope.TraceError(err)

			return 0, failure.Store(fmt.Sprintf("failed to insert data (%s)", repo.entitas), err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			logger.ErrorWithStack(err)
			scope.TraceError(err)

			return 0, failure.Store(fmt.Sprintf("failed to read inserted id (%s)", repo.entitas), err)
		}

		return id, nil
	}

	query = fmt.Sprintf("%s RETURNING %s", query, repo.primaryColumn)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Write.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, failure.Store(fmt.Sprintf("failed to prepare statement (%s)", repo.entitas), err)
	}
	defer prepare.Close()

	var id int64

	if err = prepare.GetContext(ctx, &id, model); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, failure.Store(fmt.Sprintf("failed to insert data (%s)", repo.entitas), err)
	}

	return id, nil
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Exist", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	exist := false

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, failure.Store(fmt.Sprintf("failed to check exist data (%s)", repo.entitas), err)
	}
	defer prepare.Close()

	if err = prepare.GetContext(ctx, &exist, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, failure.Store(fmt.Sprintf("failed to check exist data (%s)", repo.entitas), err)
	}

	return exist, nil
}

// Get returns the first row matching filter, or the zero value when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup) (T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Get", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	var model T

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return model, errRequiredFilter
	}

	query := repo.selectQuery(ctx, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model, failure.Store(fmt.Sprintf("failed to prepare statement (%s)", repo.entitas), err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &model, args)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return model, failure.Store(fmt.Sprintf("failed to get data (%s)", repo.entitas), err)
	}

	return model, nil
}

// GetAll returns every row matching filter in the store's natural order. An empty
// filter selects the whole table.
func (repo *Repository[T]) GetAll(ctx context.Context, filter dto.FilterGroup) ([]T, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.GetAll", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	query := repo.selectQuery(ctx, where)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	models := []T{}

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, failure.Store(fmt.Sprintf("failed to prepare statement (%s)", repo.entitas), err)
	}
	defer prepare.Close()

	if err = prepare.SelectContext(ctx, &models, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return models, failure.Store(fmt.Sprintf("failed to get all data (%s)", repo.entitas), err)
	}

	return models, nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Delete", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return errRequiredFilter
	}

	query := fmt.Sprintf("DELETE FROM %s %s", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	_, err := repo.db.Write.NamedExecContext(ctx, query, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return failure.Store(fmt.Sprintf("failed to delete data (%s)", repo.entitas), err)
	}

	return nil
}

// Update sets the given columns on every row matching filter. Columns are written in
// name order so the generated statement is stable.
func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.Update", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	where, args := repo.BuildWhereClause(ctx, filter)
	if where == "" {
		return errRequiredFilter
	}

	updateField := []string{}

	for _, col := range slices.Sorted(maps.Keys(mod)) {
		updateField = append(updateField, fmt.Sprintf("%s = :%s", col, col))
	}

	query := fmt.Sprintf("UPDATE %s SET %s %s", repo.table, strings.Join(updateField, ", "), where)

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)
	maps.Copy(args, mod)

	_, err := repo.db.Write.NamedExecContext(ctx, query, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return failure.Store(fmt.Sprintf("failed to update data (%s)", repo.entitas), err)
	}

	return nil
}

func (repo *Repository[T]) selectQuery(ctx context.Context, where string) string {
	query := fmt.Sprintf("SELECT %s FROM %s", repo.getSelectQuery(ctx), repo.table)
	if where != "" {
		query = fmt.Sprintf("%s %s", query, where)
	}

	return query
}

func (repo *Repository[T]) getSelectQuery(ctx context.Context) string {
	_, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.getSelectQuery", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	columns := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if col.alias != "" {
			columns = append(columns, fmt.Sprintf("%s.%s AS %s", col.table, col.name, col.alias))
		} else {
			columns = append(columns, fmt.Sprintf("%s.%s", col.table, col.name))
		}
	}

	return strings.Join(columns, ", ")
}

func (repo *Repository[T]) BuildWhereClause(ctx context.Context, filter dto.FilterGroup) (string, map[string]any) {
	_, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.BuildWhereClause", constant.OtelRepositoryScopeName, repo.entitas))
	defer scope.End()

	where, args := filter.GetWhereClause()

	if where == "" {
		return where, map[string]any{}
	}

	return "WHERE " + where, args
}

func getColumns(table string, reflectType reflect.Type) []column {
	columns := []column{}

	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, getColumns(table, field.Type)...)

			continue
		}

		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}

		col := column{
			name:   dbTag,
			table:  table,
			insert: field.Tag.Get("generated") != "true",
		}

		if colTag := field.Tag.Get("column"); colTag != "" {
			col.name = colTag
			col.alias = dbTag
		}

		columns = append(columns, col)
	}

	return columns
}
