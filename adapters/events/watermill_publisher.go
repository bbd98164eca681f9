package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/samoylenkodmitry/shrtlin/ports"
)

// UserRegisteredEvent announces a successful proof-of-work registration.
type UserRegisteredEvent struct {
	UserID int64  `json:"user_id"`
	Nick   string `json:"nick"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "shrtlin.users.registered",
	}
}

// PublishUserRegistered publishes a registration event.
func (p *WatermillPublisher) PublishUserRegistered(_ context.Context, userID int64, nick string) error {
	event := UserRegisteredEvent{
		UserID: userID,
		Nick:   nick,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(strconv.FormatInt(userID, 10), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishUserRegistered(context.Context, int64, string) error {
	return nil
}
