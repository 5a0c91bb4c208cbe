package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const TopicPortfolioEvents = "portfolio.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	PortfolioEventsWriter messageWriter
	logger                logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'portfolio.events'
	portfolioWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicPortfolioEvents,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		PortfolioEventsWriter: portfolioWriter,
		logger:                log,
	}, nil
}

// PublishPortfolioEvent writes e keyed by portfolio id, so every event for
// the record lands on the same partition in order.
func (c *KafkaProducerClient) PublishPortfolioEvent(ctx context.Context, e portfolio.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal portfolio event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.PortfolioID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.EventType)},
		},
	}
	if err := c.PortfolioEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to %s: %w", e.EventType, TopicPortfolioEvents, err)
	}

	c.logger.Debug("Published portfolio event",
		zap.String("event_type", string(e.EventType)),
		zap.String("portfolio_id", e.PortfolioID.String()),
		zap.Int("version", e.Version),
	)
	return nil
}

// DecodePortfolioEvent parses a message read from TopicPortfolioEvents.
func DecodePortfolioEvent(msg kafka.Message) (portfolio.Event, error) {
	var e portfolio.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return e, fmt.Errorf("unmarshal portfolio event: %w", err)
	}
	if e.EventType == "" {
		return e, fmt.Errorf("portfolio event without eventType")
	}
	return e, nil
}

func (c *KafkaProducerClient) Close() {
	if c.PortfolioEventsWriter != nil {
		if err := c.PortfolioEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close Kafka writer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producers")
}
