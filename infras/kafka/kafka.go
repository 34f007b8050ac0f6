package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"todolist/config"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type Message struct {
	Key   string
	Value any
}

func (m *Message) ToKafkaMessage() (kafkaGo.Message, error) {
	jsonValue, err := json.Marshal(m.Value)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal message value to JSON")

		return kafkaGo.Message{}, fmt.Errorf("failed to marshal message value to JSON: %w", err)
	}

	return kafkaGo.Message{
		Key:   []byte(m.Key),
		Value: jsonValue,
	}, nil
}

type Client interface {
	SendMessages(ctx context.Context, messages ...Message) error
	Close() error
}

type kafkaClientImpl struct {
	topic  string
	writer *kafkaGo.Writer
}

// New returns a producer for the configured topic. When Kafka is disabled the
// returned client accepts and drops every message.
func New(config *config.Config) Client {
	if !config.Kafka.Enable {
		log.Info().Msg("Kafka disabled, events will not be published")

		return noopClient{}
	}

	writer := newWriter(config)

	log.Info().Strs("brokers", config.Kafka.Brokers).Str("topic", config.Kafka.Topic).Msg("Kafka client initialized")

	return &kafkaClientImpl{
		topic:  config.Kafka.Topic,
		writer: writer,
	}
}

// newWriter builds an async writer: WriteMessages only enqueues, and delivery errors are
// reported through Completion.
func newWriter(config *config.Config) *kafkaGo.Writer {
	transport := &kafkaGo.Transport{}

	if config.Kafka.SASL.Username != "" {
		transport.SASL = plain.Mechanism{
			Username: config.Kafka.SASL.Username,
			Password: config.Kafka.SASL.Password,
		}
	}

	return &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(config.Kafka.Brokers...),
		Topic:                  config.Kafka.Topic,
		Transport:              transport,
		Balancer:               &kafkaGo.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             logDelivery(config.Kafka.Topic),
	}
}

func logDelivery(topic string) func([]kafkaGo.Message, error) {
	return func(messages []kafkaGo.Message, err error) {
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Int("count", len(messages)).Msg("Failed to deliver message to Kafka.")

			return
		}

		log.Debug().Str("topic", topic).Int("count", len(messages)).Msg("Delivered message successfully.")
	}
}

func (k *kafkaClientImpl) SendMessages(ctx context.Context, messages ...Message) error {
	msgs := make([]kafkaGo.Message, 0, len(messages))

	for _, message := range messages {
		msg, err := message.ToKafkaMessage()
		if err != nil {
			log.Error().Err(err).Str("topic", k.topic).Msg("Failed to convert message to Kafka message.")

			return fmt.Errorf("failed to convert message to Kafka message: %w", err)
		}

		msgs = append(msgs, msg)
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		log.Error().Err(err).Str("topic", k.topic).Msg("Failed to send message to Kafka.")

		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().Str("topic", k.topic).Int("count", len(msgs)).Msg("Queued message for delivery.")

	return nil
}

func (k *kafkaClientImpl) Close() error {
	return k.writer.Close()
}

type noopClient struct{}

func (noopClient) SendMessages(_ context.Context, _ ...Message) error {
	return nil
}

func (noopClient) Close() error {
	return nil
}
