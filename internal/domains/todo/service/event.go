package service

import (
	"context"
	"strconv"
	"todolist/infras/kafka"
	"todolist/internal/domains/todo/model"
	"todolist/shared/constant"
	"todolist/shared/logger"
	"todolist/shared/timezone"
)

const (
	EventCreated = "todo.created"
	EventUpdated = "todo.updated"
	EventDeleted = "todo.deleted"
)

// Event is the payload published on every todo change.
type Event struct {
	Type       string         `json:"type"`
	ID         int64          `json:"id"`
	Todo       map[string]any `json:"todo"`
	RequestID  string         `json:"requestId,omitempty"`
	OccurredAt int64          `json:"occurredAt"`
}

// publish sends the event and only logs failures; the store change has already happened.
func (s *serviceImpl) publish(ctx context.Context, eventType string, id int64, todo *model.Todo) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()

	scope.SetAttributes(map[string]any{
		"event.type": eventType,
		"todo.id":    id,
	})

	event := Event{
		Type:       eventType,
		ID:         id,
		Todo:       todo.Serialize(),
		RequestID:  logger.RequestID(ctx),
		OccurredAt: model.EpochMillis(timezone.Now()),
	}

	err := s.events.SendMessages(ctx, kafka.Message{Key: strconv.FormatInt(id, 10), Value: event})
	if err != nil {
		scope.TraceError(err)
		logger.FromContext(ctx).Warn().Err(err).Str("event", eventType).Int64("id", id).Msg("failed to publish todo event")
	}
}
