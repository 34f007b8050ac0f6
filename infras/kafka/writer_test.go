package kafka

import (
	"context"
	"errors"
	"testing"
	"time"
	"todolist/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kafkaConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Kafka.Enable = true
	cfg.Kafka.Brokers = []string{"127.0.0.1:1"}
	cfg.Kafka.Topic = "todo-events"

	return cfg
}

func TestNewWriter(t *testing.T) {
	writer := newWriter(kafkaConfig())

	assert.True(t, writer.Async)
	assert.NotNil(t, writer.Completion)
	assert.Equal(t, "todo-events", writer.Topic)
	assert.True(t, writer.AllowAutoTopicCreation)
}

func TestSendMessages_DoesNotWaitForBroker(t *testing.T) {
	writer := newWriter(kafkaConfig())
	writer.MaxAttempts = 1

	client := &kafkaClientImpl{topic: writer.Topic, writer: writer}

	t.Cleanup(func() { _ = client.Close() })

	started := time.Now()
	err := client.SendMessages(context.Background(), Message{Key: "1", Value: map[string]any{"id": 1}})

	require.NoError(t, err)
	assert.Less(t, time.Since(started), 500*time.Millisecond)
}

func TestLogDelivery(t *testing.T) {
	assert.NotPanics(t, func() {
		logDelivery("todo-events")(nil, errors.New("broker unavailable"))
		logDelivery("todo-events")(nil, nil)
	})
}
