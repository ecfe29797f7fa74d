package ddlog

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ustudio/datadog-logger/pkg/logx"
)

func newService(t *testing.T) *logx.Service {
	t.Helper()
	svc, _ := logx.New(logx.Config{Level: "debug", Console: true, Out: io.Discard})
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func register(t *testing.T, svc *logx.Service, name string, c EventCreator, opts ...Option) *Registration {
	t.Helper()
	reg, err := Register(svc, name, c, opts...)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func TestRegisterOnRootForwardsErrorsOnly(t *testing.T) {
	svc := newService(t)
	c := &recordingClient{}
	register(t, svc, "", c, WithTags("some:tag"), WithMentions("@mention"))

	log := svc.Logger()
	log.Info("Should not be logged")
	log.Error("Should be logged")

	want := []Event{{
		Title:     "Should be logged",
		Text:      "Should be logged\n\n@mention",
		Tags:      []string{"some:tag"},
		AlertType: alert(AlertError),
	}}
	if diff := cmp.Diff(want, c.sent()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestRegisterOnNamedLogger(t *testing.T) {
	svc := newService(t)
	c := &recordingClient{}
	register(t, svc, "some.logger", c, WithTags("some:tag"), WithMentions("@mention"))

	some := svc.Named("some.logger")
	other := svc.Named("other.logger")

	some.Info("Should not be logged")
	some.Error("Should be logged")
	other.Error("Should not be logged")

	want := []Event{{
		Title:     "Should be logged",
		Text:      "Should be logged\n\n@mention",
		Tags:      []string{"some:tag"},
		AlertType: alert(AlertError),
	}}
	if diff := cmp.Diff(want, c.sent()); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
}

func TestRegisterCoversDescendantsNotLookalikes(t *testing.T) {
	svc := newService(t)
	c := &recordingClient{}
	register(t, svc, "some", c)

	svc.Named("some").Named("logger").Critical("child")
	svc.Named("something").Error("lookalike")
	svc.Logger().Error("root")

	got := c.sent()
	if len(got) != 1 || got[0].Title != "child" {
		t.Fatalf("expected only the descendant record, got %+v", got)
	}
	if got[0].AlertType == nil || *got[0].AlertType != AlertError {
		t.Fatalf("critical must map to error, got %v", got[0].AlertType)
	}
}

func TestRegistrationCloseStopsDispatch(t *testing.T) {
	svc := newService(t)
	c := &recordingClient{}
	reg := register(t, svc, "", c)

	svc.Logger().Error("first")
	if err := reg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_ = reg.Close()
	svc.Logger().Error("second")

	if got := c.sent(); len(got) != 1 || got[0].Title != "first" {
		t.Fatalf("expected only the first record, got %+v", got)
	}
	if svc.Sinks() != 0 {
		t.Fatalf("expected no sinks left, got %d", svc.Sinks())
	}
}

func TestRegisterAtHonorsMinLevel(t *testing.T) {
	svc := newService(t)
	c := &recordingClient{}
	reg, err := RegisterAt(svc, "", logx.LevelWarn, c)
	if err != nil {
		t.Fatalf("RegisterAt: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })

	svc.Logger().Info("skip")
	svc.Logger().Warn("keep")

	got := c.sent()
	if len(got) != 1 || got[0].AlertType == nil || *got[0].AlertType != AlertWarning {
		t.Fatalf("expected one warning event, got %+v", got)
	}
}

func TestFailingClientDoesNotDisruptLogging(t *testing.T) {
	svc := newService(t)
	c := &recordingClient{panicWith: "down"}
	hook := &recordingHook{}
	register(t, svc, "", c, WithErrorHandler(hook.handle))

	svc.Logger().Error("one")
	svc.Logger().Error("two")

	if len(hook.calls) != 2 {
		t.Fatalf("expected two hook calls, got %d", len(hook.calls))
	}
}

func TestRegisterRequiresClient(t *testing.T) {
	svc := newService(t)
	if _, err := Register(svc, "", nil); err == nil {
		t.Fatalf("expected error")
	}
	if svc.Sinks() != 0 {
		t.Fatalf("failed registration must not attach a sink")
	}
}
