package todo

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"todolist/infras/otel"
	"todolist/internal/domains/todo/model"
	"todolist/internal/domains/todo/model/dto"
	"todolist/internal/domains/todo/service"
	"todolist/shared/constant"
	"todolist/shared/failure"
	"todolist/shared/logger"
	"todolist/shared/validator"
	"todolist/transport/http/middleware"
	"todolist/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service    service.Todo
	middleware middleware.Auth
	otel       otel.Otel
}

func New(service service.Todo, middleware middleware.Auth, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/todos", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetTodos)
		routerGroup.Get("/{id}", handler.GetTodoByID)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.middleware.APIKey)

			protected.Post("/", handler.CreateTodo)
			protected.Put("/{id}", handler.UpdateTodo)
			protected.Delete("/{id}", handler.DeleteTodo)
		})
	})
}

// CreateTodo handles the creation of a new todo item.
// @Summary Create a new todo item
// @Description Store a new todo. Title (1-32 characters) and description (1-8192 characters) are trimmed and stripped of markup.
// @Tags Todo
// @Accept json
// @Produce json
// @Param request body dto.TodoRequest true "Todo"
// @Success 201 {object} response.Data[dto.TodoResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/todos [post]
// @Security ApiKeyAuth
func (handler *Handler) CreateTodo(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateTodo")
	defer scope.End()

	req := dto.TodoRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	todo, err := req.ToModel()
	if err != nil {
		scope.TraceError(err)
		response.WithError(writer, err)

		return
	}

	if err = handler.service.Create(ctx, &todo); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Error().Err(err).Msg("failed to create todo")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent(fmt.Sprintf("Todo %d created", todo.ID()))

	res := dto.TodoResponse{}
	res.FromModel(todo)

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetTodos lists todo items.
// @Summary List todo items
// @Description Without parameters every todo is returned. `id` looks up one todo, `title` matches a substring of the title and `start` with `end` select todos whose taskDate lies in the inclusive range. Dates accept RFC 3339, "2006-01-02 15:04:05", "2006-01-02" or epoch milliseconds.
// @Tags Todo
// @Produce json
// @Param id query int false "Todo ID"
// @Param title query string false "Title fragment"
// @Param start query string false "Range start"
// @Param end query string false "Range end"
// @Success 200 {object} response.Data[dto.TodosResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/todos [get]
func (handler *Handler) GetTodos(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTodos")
	defer scope.End()

	query := r.URL.Query()

	if query.Has(constant.RequestParamID) {
		handler.getTodo(w, r, query.Get(constant.RequestParamID))

		return
	}

	var (
		todos []model.Todo
		err   error
	)

	switch {
	case query.Has(constant.RequestParamTitle):
		todos, err = handler.service.FetchByTitle(ctx, query.Get(constant.RequestParamTitle))
	case query.Has(constant.RequestParamStart) || query.Has(constant.RequestParamEnd):
		todos, err = handler.service.FetchByDateRange(ctx, query.Get(constant.RequestParamStart), query.Get(constant.RequestParamEnd))
	default:
		todos, err = handler.service.FetchAll(ctx)
	}

	if err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Msg("failed to get todos")

		response.WithError(w, err)

		return
	}

	scope.SetAttribute("todo.count", len(todos))

	res := dto.TodosResponse{}
	res.FromModels(todos)

	response.WithJSON(w, http.StatusOK, res)
}

// GetTodoByID retrieves a todo item by its ID.
// @Summary Get a todo item by ID
// @Tags Todo
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} response.Data[dto.TodoResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/todos/{id} [get]
func (handler *Handler) GetTodoByID(w http.ResponseWriter, r *http.Request) {
	handler.getTodo(w, r, chi.URLParam(r, constant.RequestParamID))
}

func (handler *Handler) getTodo(w http.ResponseWriter, r *http.Request, rawID string) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTodoByID")
	defer scope.End()

	todo, err := handler.find(r, rawID)
	if err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Str("id", rawID).Msg("failed to get todo by ID")

		response.WithError(w, err)

		return
	}

	res := dto.TodoResponse{}
	res.FromModel(*todo)

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateTodo updates an existing todo item by its ID.
// @Summary Update a todo item by ID
// @Description Overwrite title and description of a stored todo.
// @Tags Todo
// @Accept json
// @Produce json
// @Param id path int true "Todo ID"
// @Param request body dto.TodoRequest true "Todo"
// @Success 200 {object} response.Data[dto.TodoResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/todos/{id} [put]
// @Security ApiKeyAuth
func (handler *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateTodo")
	defer scope.End()

	req := dto.TodoRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	todo, err := handler.find(r, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err = req.Apply(todo); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err = handler.service.Update(ctx, todo); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Error().Err(err).Int64("id", todo.ID()).Msg("failed to update todo")

		response.WithError(w, err)

		return
	}

	res := dto.TodoResponse{}
	res.FromModel(*todo)

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteTodo deletes a todo item by its ID.
// @Summary Delete a todo item by ID
// @Tags Todo
// @Produce json
// @Param id path int true "Todo ID"
// @Success 200 {object} response.Message "Todo deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/todos/{id} [delete]
// @Security ApiKeyAuth
func (handler *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteTodo")
	defer scope.End()

	todo, err := handler.find(r, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	if err = handler.service.Delete(ctx, todo); err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Error().Err(err).Int64("id", todo.ID()).Msg("failed to delete todo")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Todo deleted successfully")
}

// find loads the todo named by rawID, answering 404 when it does not exist.
func (handler *Handler) find(r *http.Request, rawID string) (*model.Todo, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return nil, failure.BadRequestFromString(fmt.Sprintf("id must be a positive integer, got %q", rawID)) // nolint:wrapcheck
	}

	todo, err := handler.service.FetchByID(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if todo == nil {
		return nil, failure.NotFound(fmt.Sprintf("todo %d not found", id)) // nolint:wrapcheck
	}

	return todo, nil
}
