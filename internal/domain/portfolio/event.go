package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated EventType = "portfolio.created"
	EventUpdated EventType = "portfolio.updated"
)

type Event struct {
	EventType   EventType `json:"eventType"`
	PortfolioID uuid.UUID `json:"portfolioId"`
	Version     int       `json:"version"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type EventPublisher interface {
	PublishPortfolioEvent(ctx context.Context, e Event) error
}
