package ports

import "context"

// EventPublisher fans out domain events to interested consumers.
// Publishing is best effort; a broker outage never fails the request
// that produced the event.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, userID int64, nick string) error
}
