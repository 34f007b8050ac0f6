package dto

import (
	"todolist/internal/domains/todo/model"
)

// TodoRequest is the body of create and update calls. Length bounds apply after
// trimming, so they are checked by the model setters rather than here.
type TodoRequest struct {
	Title       string `json:"title"       validate:"notblank" example:"Buy groceries"`
	Description string `json:"description" validate:"notblank" example:"Milk, eggs and bread"`
}

// ToModel validates the request fields through the record setters.
func (r *TodoRequest) ToModel() (model.Todo, error) {
	return model.New(r.Title, r.Description)
}

// Apply overwrites title and description of todo.
func (r *TodoRequest) Apply(todo *model.Todo) error {
	if err := todo.SetTitle(r.Title); err != nil {
		return err
	}

	return todo.SetDescription(r.Description)
}

// TodoResponse mirrors model.Todo.Serialize. taskDate is milliseconds since the epoch.
type TodoResponse struct {
	ID          *int64 `json:"id"          example:"1"`
	Title       string `json:"title"       example:"Buy groceries"`
	Description string `json:"description" example:"Milk, eggs and bread"`
	TaskDate    *int64 `json:"taskDate"    example:"1700000000123"`
}

func (r *TodoResponse) FromModel(todo model.Todo) {
	r.ID = nil
	r.TaskDate = nil

	if todo.IsPersisted() {
		id := todo.ID()
		r.ID = &id
	}

	if !todo.TaskDate().IsZero() {
		taskDate := model.EpochMillis(todo.TaskDate())
		r.TaskDate = &taskDate
	}

	r.Title = todo.Title()
	r.Description = todo.Description()
}

type TodosResponse []TodoResponse

func (r *TodosResponse) FromModels(models []model.Todo) {
	*r = make(TodosResponse, len(models))

	for i, mod := range models {
		(*r)[i].FromModel(mod)
	}
}
