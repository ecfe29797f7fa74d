// Package ddlog forwards log records to the Datadog Events API.
//
// A Handler is a logx.Sink: each record it receives becomes one event
// (title = message, text = rendered body plus optional mentions, optional
// tags, alert_type from the record level) sent with a single synchronous
// CreateEvent call. Failures never reach the logging caller; they go to the
// handler's error hook.
//
//	svc, log := logx.New(logx.Config{Level: "info", Console: true})
//	reg, err := ddlog.Register(svc, "", client, ddlog.WithTags("env:prod"), ddlog.WithMentions("@ops"))
//	if err != nil {
//		return err
//	}
//	defer reg.Close()
//	log.Error("payment failed", logx.Err(err)) // one Datadog event
package ddlog
