package ddlog

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/ustudio/datadog-logger/pkg/logx"
)

type recordingClient struct {
	mu        sync.Mutex
	events    []Event
	err       error
	panicWith any
}

func (c *recordingClient) CreateEvent(_ context.Context, ev Event) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	if c.panicWith != nil {
		panic(c.panicWith)
	}
	return c.err
}

func (c *recordingClient) sent() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

type hookCall struct {
	entry logx.Entry
	err   error
}

type recordingHook struct {
	mu    sync.Mutex
	calls []hookCall
}

func (h *recordingHook) handle(e logx.Entry, err error) {
	h.mu.Lock()
	h.calls = append(h.calls, hookCall{entry: e, err: err})
	h.mu.Unlock()
}

func alert(at AlertType) *AlertType { return &at }

// rawEntry builds an entry the way logx delivers it, without a level field
// unless one is given.
func rawEntry(level logx.Level, msg string) logx.Entry {
	raw := `{"message":"` + msg + `"}`
	if level != zerolog.NoLevel {
		raw = `{"level":"` + level.String() + `","message":"` + msg + `"}`
	}
	return logx.Entry{Level: level, Raw: []byte(raw + "\n")}
}

func newHandler(t *testing.T, c EventCreator, opts ...Option) *Handler {
	t.Helper()
	h, err := NewHandler(c, opts...)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func TestEmitSendsMessageAsTitleAndText(t *testing.T) {
	c := &recordingClient{}
	h := newHandler(t, c)

	h.Emit(rawEntry(zerolog.NoLevel, "Some message"))

	want := []Event{{Title: "Some message", Text: "Some message"}}
	if diff := cmp.Diff(want, c.sent()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
	if c.sent()[0].HasTags() {
		t.Fatalf("expected no tags field")
	}
}

func TestEmitSendsRenderedErrorAsText(t *testing.T) {
	var captured logx.Entry
	svc, log := logx.New(logx.Config{Level: "debug", Out: io.Discard})
	svc.AddSink("", logx.LevelTrace, logx.SinkFunc(func(e logx.Entry) { captured = e }))

	stack := "main.run\n  /app/main.go:12"
	log.Log(zerolog.NoLevel, "Some message", logx.Err(errors.New("RuntimeError: message")), logx.Stack(stack))
	if captured.Raw == nil {
		t.Fatalf("sink saw no record")
	}

	c := &recordingClient{}
	h := newHandler(t, c)
	h.Emit(captured)

	want := []Event{{Title: "Some message", Text: "Some message\nRuntimeError: message\n" + stack}}
	if diff := cmp.Diff(want, c.sent()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestEmitIncludesTags(t *testing.T) {
	c := &recordingClient{}
	h := newHandler(t, c, WithTags("some:tag"))

	h.Emit(rawEntry(zerolog.NoLevel, "Some message"))

	want := []Event{{Title: "Some message", Text: "Some message", Tags: []string{"some:tag"}}}
	if diff := cmp.Diff(want, c.sent()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestEmptyTagsArePresent(t *testing.T) {
	h := newHandler(t, &recordingClient{}, WithTags())

	ev, err := h.Translate(rawEntry(zerolog.NoLevel, "Some message"))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !ev.HasTags() || len(ev.Tags) != 0 {
		t.Fatalf("expected present empty tags, got %#v", ev.Tags)
	}
}

func TestEmitAppendsMentions(t *testing.T) {
	c := &recordingClient{}
	h := newHandler(t, c, WithMentions("@mention-1", "@mention-2"))

	h.Emit(rawEntry(zerolog.NoLevel, "Some message"))

	want := []Event{{Title: "Some message", Text: "Some message\n\n@mention-1 @mention-2"}}
	if diff := cmp.Diff(want, c.sent()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestEmptyMentionsLeaveTextUntouched(t *testing.T) {
	h := newHandler(t, &recordingClient{}, WithMentions())

	ev, err := h.Translate(rawEntry(zerolog.NoLevel, "Some message"))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if ev.Text != "Some message" {
		t.Fatalf("expected untouched text, got %q", ev.Text)
	}
}

func TestEmitMapsLevelToAlertType(t *testing.T) {
	cases := []struct {
		level logx.Level
		want  *AlertType
	}{
		{logx.LevelDebug, alert(AlertInfo)},
		{logx.LevelInfo, alert(AlertInfo)},
		{logx.LevelWarn, alert(AlertWarning)},
		{logx.LevelError, alert(AlertError)},
		{logx.LevelCritical, alert(AlertError)},
		{logx.LevelTrace, nil},
		{logx.LevelPanic, nil},
	}
	for _, tc := range cases {
		c := &recordingClient{}
		h := newHandler(t, c)
		h.Emit(rawEntry(tc.level, "Some message"))

		want := []Event{{Title: "Some message", Text: "Some message", AlertType: tc.want}}
		if diff := cmp.Diff(want, c.sent()); diff != "" {
			t.Fatalf("level %s: unexpected events (-want +got):\n%s", tc.level, diff)
		}
	}
}

func TestTranslateDoesNotShareConfig(t *testing.T) {
	tags := []string{"a:b"}
	h := newHandler(t, &recordingClient{}, WithTags(tags...))
	tags[0] = "changed"

	ev, err := h.Translate(rawEntry(logx.LevelError, "x"))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	ev.Tags[0] = "mutated"

	ev2, err := h.Translate(rawEntry(logx.LevelError, "x"))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if ev2.Tags[0] != "a:b" {
		t.Fatalf("handler tags leaked: %v", ev2.Tags)
	}
}

func TestEmitRoutesClientErrorToHook(t *testing.T) {
	boom := errors.New("event create error")
	c := &recordingClient{err: boom}
	hook := &recordingHook{}
	h := newHandler(t, c, WithErrorHandler(hook.handle))

	e := rawEntry(logx.LevelError, "Some message")
	h.Emit(e)

	if len(c.sent()) != 1 {
		t.Fatalf("expected exactly one call, got %d", len(c.sent()))
	}
	if len(hook.calls) != 1 {
		t.Fatalf("expected hook called once, got %d", len(hook.calls))
	}
	if diff := cmp.Diff(e, hook.calls[0].entry); diff != "" {
		t.Fatalf("hook got a different entry (-want +got):\n%s", diff)
	}
	if !errors.Is(hook.calls[0].err, boom) {
		t.Fatalf("expected wrapped client error, got %v", hook.calls[0].err)
	}
}

func TestEmitRoutesClientPanicToHook(t *testing.T) {
	c := &recordingClient{panicWith: "transport exploded"}
	hook := &recordingHook{}
	h := newHandler(t, c, WithErrorHandler(hook.handle))

	h.Emit(rawEntry(logx.LevelError, "Some message"))

	if len(hook.calls) != 1 {
		t.Fatalf("expected hook called once, got %d", len(hook.calls))
	}
	if !strings.Contains(hook.calls[0].err.Error(), "transport exploded") {
		t.Fatalf("unexpected error: %v", hook.calls[0].err)
	}
}

func TestEmitRoutesFormatErrorToHookWithoutCalling(t *testing.T) {
	c := &recordingClient{}
	hook := &recordingHook{}
	h := newHandler(t, c, WithErrorHandler(hook.handle))

	h.Emit(logx.Entry{Level: logx.LevelError, Raw: []byte("not json")})

	if len(c.sent()) != 0 {
		t.Fatalf("expected no call, got %d", len(c.sent()))
	}
	if len(hook.calls) != 1 {
		t.Fatalf("expected hook called once, got %d", len(hook.calls))
	}
}

func TestEmitRateLimitDropsSilently(t *testing.T) {
	c := &recordingClient{}
	hook := &recordingHook{}
	h := newHandler(t, c, WithRateLimit(1), WithErrorHandler(hook.handle))

	for i := 0; i < 3; i++ {
		h.Emit(rawEntry(logx.LevelError, "Some message"))
	}

	if len(c.sent()) != 1 {
		t.Fatalf("expected 1 call under the limit, got %d", len(c.sent()))
	}
	if len(hook.calls) != 0 {
		t.Fatalf("dropped records must not reach the hook")
	}
}

func TestNewHandlerRequiresClient(t *testing.T) {
	if _, err := NewHandler(nil); !errors.Is(err, ErrNoClient) {
		t.Fatalf("expected ErrNoClient, got %v", err)
	}
}
