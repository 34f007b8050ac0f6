package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=./mocks/repository_mock.go -package=mocks

import (
	"context"
	"todolist/infras/database"
	"todolist/infras/otel"
	"todolist/internal/domains/todo/model"
	gDto "todolist/shared/dto"
	gRepo "todolist/shared/repository"
)

type Todo interface {
	Insert(ctx context.Context, row model.Row) (int64, error)
	Get(ctx context.Context, filter gDto.FilterGroup) (model.Row, error)
	GetAll(ctx context.Context, filter gDto.FilterGroup) ([]model.Row, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Row]
}

func New(db *database.Connection, otel otel.Otel) Todo {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Row](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
