// Package logx configures structured logging for datadog-logger and the
// applications that embed it.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Named loggers ("some.logger") with dotted-prefix routing
//   - Pluggable sinks (min-level + logger name) that receive each JSON line
//
// Sinks are how records leave the process: a sink registered on "a" sees
// records logged on "a" and on every descendant ("a.b", "a.b.c"), never on
// siblings. A sink registered on "" sees everything.
package logx
