package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"todolist/infras/kafka"
	"todolist/infras/otel"
	"todolist/internal/domains/todo/model"
	"todolist/internal/domains/todo/repository"
	"todolist/shared"
	"todolist/shared/constant"
	gDto "todolist/shared/dto"
	"todolist/shared/failure"
	"todolist/shared/logger"
	"todolist/shared/timezone"
)

var errMissingAfterWrite = errors.New("row missing after write")

// Todo is the store access for todo records.
type Todo interface {
	// Create inserts a new record and fills in the id and taskDate assigned by the store.
	Create(ctx context.Context, todo *model.Todo) error
	// Update overwrites title and description of a persisted record.
	Update(ctx context.Context, todo *model.Todo) error
	// Delete removes a persisted record and clears its id.
	Delete(ctx context.Context, todo *model.Todo) error
	// FetchByID returns nil without error when no record has the id.
	FetchByID(ctx context.Context, id int64) (*model.Todo, error)
	FetchByTitle(ctx context.Context, title string) ([]model.Todo, error)
	FetchByDateRange(ctx context.Context, start, end string) ([]model.Todo, error)
	FetchAll(ctx context.Context) ([]model.Todo, error)
}

type serviceImpl struct {
	repo   repository.Todo
	events kafka.Client
	otel   otel.Otel
}

func New(repo repository.Todo, events kafka.Client, otel otel.Otel) Todo {
	return &serviceImpl{
		repo:   repo,
		events: events,
		otel:   otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, todo *model.Todo) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if todo.IsPersisted() {
		return failure.Conflict("not a new task") // nolint:wrapcheck
	}

	id, err := s.repo.Insert(ctx, todo.ToRow())
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("failed to create todo")

		return fmt.Errorf("failed to create todo: %w", err)
	}

	if err = s.refresh(ctx, todo, id); err != nil {
		return err
	}

	scope.SetAttribute("todo.id", todo.ID())
	s.publish(ctx, EventCreated, todo.ID(), todo)

	return nil
}

func (s *serviceImpl) Update(ctx context.Context, todo *model.Todo) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureStored(ctx, todo); err != nil {
		return err
	}

	scope.SetAttribute("todo.id", todo.ID())

	updatedFields := shared.TransformFields(todo.ToRow())

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(todo.ID(), model.FieldID, model.TableName)); err != nil {
		logger.FromContext(ctx).Error().Err(err).Int64("id", todo.ID()).Msg("failed to update todo")

		return fmt.Errorf("failed to update todo: %w", err)
	}

	// taskDate may carry ON UPDATE CURRENT_TIMESTAMP on MySQL.
	if err = s.refresh(ctx, todo, todo.ID()); err != nil {
		return err
	}

	s.publish(ctx, EventUpdated, todo.ID(), todo)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, todo *model.Todo) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureStored(ctx, todo); err != nil {
		return err
	}

	id := todo.ID()
	scope.SetAttribute("todo.id", id)

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		logger.FromContext(ctx).Error().Err(err).Int64("id", id).Msg("failed to delete todo")

		return fmt.Errorf("failed to delete todo: %w", err)
	}

	todo.ClearID()
	s.publish(ctx, EventDeleted, id, todo)

	return nil
}

func (s *serviceImpl) FetchByID(ctx context.Context, id int64) (res *model.Todo, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FetchByID")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if id <= 0 {
		return nil, failure.BadRequestFromString("id must be a positive integer") // nolint:wrapcheck
	}

	scope.SetAttribute("todo.id", id)

	row, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Int64("id", id).Msg("failed to get todo")

		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	if row.ID == 0 {
		return nil, nil
	}

	todo, err := model.FromRow(row)
	if err != nil {
		return nil, failure.Store("failed to read todo", err)
	}

	return &todo, nil
}

func (s *serviceImpl) FetchByTitle(ctx context.Context, title string) (res []model.Todo, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FetchByTitle")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	title = model.Sanitize(title)
	if title == "" {
		return nil, failure.BadRequestFromString("title is empty or insecure") // nolint:wrapcheck
	}

	rows, err := s.repo.GetAll(ctx, shared.FilterContains(model.FieldTitle, model.TableName, title))
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("title", title).Msg("failed to get todos by title")

		return nil, fmt.Errorf("failed to get todos by title: %w", err)
	}

	return fromRows(rows)
}

func (s *serviceImpl) FetchByDateRange(ctx context.Context, start, end string) (res []model.Todo, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FetchByDateRange")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	startDate, err := timezone.ParseDateTime(start)
	if err != nil {
		return nil, failure.BadRequestFromString(fmt.Sprintf("start date is not a valid date: %q", start)) // nolint:wrapcheck
	}

	endDate, err := timezone.ParseDateTime(end)
	if err != nil {
		return nil, failure.BadRequestFromString(fmt.Sprintf("end date is not a valid date: %q", end)) // nolint:wrapcheck
	}

	if startDate.After(endDate) {
		return nil, failure.BadRequestFromString("start date must not be after end date") // nolint:wrapcheck
	}

	scope.SetAttributes(map[string]any{
		"todo.start": startDate,
		"todo.end":   endDate,
	})

	rows, err := s.repo.GetAll(ctx, shared.FilterByRange(model.FieldTaskDate, model.TableName, startDate, endDate))
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Time("start", startDate).Time("end", endDate).Msg("failed to get todos by date")

		return nil, fmt.Errorf("failed to get todos by date: %w", err)
	}

	return fromRows(rows)
}

func (s *serviceImpl) FetchAll(ctx context.Context) (res []model.Todo, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FetchAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	rows, err := s.repo.GetAll(ctx, gDto.FilterGroup{})
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("failed to get todos")

		return nil, fmt.Errorf("failed to get todos: %w", err)
	}

	return fromRows(rows)
}

// ensureStored rejects records without an id and ids that no longer exist.
func (s *serviceImpl) ensureStored(ctx context.Context, todo *model.Todo) error {
	if !todo.IsPersisted() {
		return failure.NotFound("todo has not been saved") // nolint:wrapcheck
	}

	exist, err := s.repo.Exist(ctx, shared.FilterByID(todo.ID(), model.FieldID, model.TableName))
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Int64("id", todo.ID()).Msg("failed to check if todo exists")

		return fmt.Errorf("failed to check if todo exists: %w", err)
	}

	if !exist {
		logger.FromContext(ctx).Warn().Int64("id", todo.ID()).Msg("todo not found")

		return failure.NotFound(fmt.Sprintf("todo %d not found", todo.ID())) // nolint:wrapcheck
	}

	return nil
}

// refresh reads back the row with the given id and copies the store assigned values.
func (s *serviceImpl) refresh(ctx context.Context, todo *model.Todo, id int64) error {
	row, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Int64("id", id).Msg("failed to read back todo")

		return fmt.Errorf("failed to read back todo: %w", err)
	}

	if row.ID == 0 {
		return failure.Store(fmt.Sprintf("failed to read back todo %d", id), errMissingAfterWrite)
	}

	if err = todo.SetID(row.ID); err != nil {
		return failure.Store("failed to read back todo", err)
	}

	todo.SetTaskDate(row.TaskDate)

	return nil
}

func fromRows(rows []model.Row) ([]model.Todo, error) {
	todos := make([]model.Todo, 0, len(rows))

	for _, row := range rows {
		todo, err := model.FromRow(row)
		if err != nil {
			return nil, failure.Store("failed to read todo", err)
		}

		todos = append(todos, todo)
	}

	return todos, nil
}
