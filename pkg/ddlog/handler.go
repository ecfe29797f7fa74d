package ddlog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ustudio/datadog-logger/pkg/logx"
)

// ErrNoClient is returned when a Handler is built without an EventCreator.
var ErrNoClient = errors.New("ddlog: nil event client")

// ErrorHandler receives records whose dispatch failed.
type ErrorHandler func(e logx.Entry, err error)

// Option configures a Handler.
type Option func(*Handler)

// WithTags attaches tags to every event. Calling it, even with no tags,
// makes the tags field present.
func WithTags(tags ...string) Option {
	return func(h *Handler) { h.tags = append([]string{}, tags...) }
}

// WithMentions appends "\n\n" + mentions joined by spaces to every event
// text. No mentions leaves the text untouched.
func WithMentions(mentions ...string) Option {
	return func(h *Handler) {
		if len(mentions) == 0 {
			h.mentions = ""
			return
		}
		h.mentions = strings.Join(mentions, " ")
	}
}

// WithErrorHandler replaces logx.HandleError as the failure hook.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(h *Handler) {
		if fn != nil {
			h.onError = fn
		}
	}
}

// WithRateLimit caps CreateEvent calls per second. Records over the limit
// are dropped without a call. perSec <= 0 disables the limit.
func WithRateLimit(perSec int) Option {
	return func(h *Handler) {
		if perSec <= 0 {
			h.limiter = nil
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSec), perSec)
	}
}

// Handler turns log records into Datadog events. It is a logx.Sink.
//
// A Handler is immutable after NewHandler and safe for concurrent use.
type Handler struct {
	client   EventCreator
	tags     []string
	mentions string
	onError  ErrorHandler
	limiter  *rate.Limiter
}

// NewHandler returns a Handler sending through client. Errors go to
// logx.HandleError unless WithErrorHandler is given.
func NewHandler(client EventCreator, opts ...Option) (*Handler, error) {
	if client == nil {
		return nil, ErrNoClient
	}
	h := &Handler{client: client, onError: logx.HandleError}
	for _, o := range opts {
		if o != nil {
			o(h)
		}
	}
	return h, nil
}

// Emit dispatches one record: at most one CreateEvent call, no retries.
// Every failure, panics included, goes to the error hook.
func (h *Handler) Emit(e logx.Entry) {
	if h.limiter != nil && !h.limiter.Allow() {
		return
	}
	if err := h.dispatch(e); err != nil {
		h.onError(e, err)
	}
}

func (h *Handler) dispatch(e logx.Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ddlog: panic during dispatch: %v", r)
		}
	}()

	ev, err := h.Translate(e)
	if err != nil {
		return err
	}
	if err := h.client.CreateEvent(context.Background(), ev); err != nil {
		return fmt.Errorf("ddlog: create event: %w", err)
	}
	return nil
}

// Translate builds the event for a record without sending it.
func (h *Handler) Translate(e logx.Entry) (Event, error) {
	rec, err := logx.DecodeRecord(e.Raw)
	if err != nil {
		return Event{}, fmt.Errorf("ddlog: format record: %w", err)
	}

	text := rec.Text()
	if h.mentions != "" {
		text = text + "\n\n" + h.mentions
	}

	ev := Event{Title: rec.Message, Text: text}
	if h.tags != nil {
		ev.Tags = append([]string{}, h.tags...)
	}
	if at, ok := AlertTypeFor(e.Level); ok {
		ev.AlertType = &at
	}
	return ev, nil
}
