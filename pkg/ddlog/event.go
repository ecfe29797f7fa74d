package ddlog

import "context"

// Event is the payload of one CreateEvent call.
//
// Optional fields are absent when nil: a nil Tags is not sent at all, an
// empty non-nil Tags is sent as given.
type Event struct {
	Title     string
	Text      string
	Tags      []string
	AlertType *AlertType
}

// HasTags reports whether the event carries a tags field.
func (e Event) HasTags() bool { return e.Tags != nil }

// EventCreator issues one event-creation call to the events API.
type EventCreator interface {
	CreateEvent(ctx context.Context, ev Event) error
}

// EventCreatorFunc adapts a function to EventCreator.
type EventCreatorFunc func(ctx context.Context, ev Event) error

func (f EventCreatorFunc) CreateEvent(ctx context.Context, ev Event) error { return f(ctx, ev) }
