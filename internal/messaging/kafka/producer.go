package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/booklibrary/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Producer публикует события каталога в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
	logger   *log.Entry
}

// NewProducer подключается к брокерам и создаёт синхронный producer.
func NewProducer(brokers []string, topic string, logger *log.Entry) (*Producer, error) {
	config := sarama.NewConfig()
	config.ClientID = "library-service"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return newProducer(producer, topic, logger), nil
}

func newProducer(producer sarama.SyncProducer, topic string, logger *log.Entry) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Producer{
		producer: producer,
		topic:    topic,
		now:      time.Now,
		logger:   logger.WithField("component", "kafka-producer"),
	}
}

// Publish сериализует событие и отправляет его с ключом guid книги.
func (p *Producer) Publish(ctx context.Context, event domain.CatalogEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := NewCatalogMessage(event, p.now())
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(message.Key()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(message.EventType)},
			{Key: []byte(HeaderEventID), Value: []byte(message.EventID)},
		},
		Timestamp: message.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic":      p.topic,
			"event_type": message.EventType,
			"book_guid":  message.BookGUID,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":      p.topic,
		"event_type": message.EventType,
		"book_guid":  message.BookGUID,
		"partition":  partition,
		"offset":     offset,
	}).Debug("message sent to kafka")

	return nil
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

var _ domain.EventPublisher = (*Producer)(nil)
