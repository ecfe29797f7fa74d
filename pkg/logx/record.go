package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotRecord is returned by DecodeRecord for JSON that isn't an object.
var ErrNotRecord = errors.New("logx: not a record")

// Record is a decoded Entry.
type Record struct {
	Time    time.Time
	Level   Level
	Logger  string
	Message string
	Error   string
	Stack   string

	// Fields holds every other key of the line (caller included).
	Fields map[string]any
}

// DecodeRecord parses a zerolog JSON line written by a Service.
func DecodeRecord(p []byte) (Record, error) {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(bytesTrimSpace(p)))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return Record{}, fmt.Errorf("logx: decode record: %w", err)
	}
	if m == nil {
		return Record{}, ErrNotRecord
	}

	rec := Record{Level: zerolog.NoLevel}
	if v, ok := pop(m, zerolog.LevelFieldName); ok {
		if lvl, err := zerolog.ParseLevel(v); err == nil {
			rec.Level = lvl
		}
	}
	if v, ok := pop(m, zerolog.TimestampFieldName); ok {
		if t, err := time.Parse(zerolog.TimeFieldFormat, v); err == nil {
			rec.Time = t
		}
	}
	rec.Logger, _ = pop(m, LoggerFieldName)
	rec.Message, _ = pop(m, zerolog.MessageFieldName)
	rec.Error, _ = pop(m, zerolog.ErrorFieldName)
	rec.Stack, _ = pop(m, zerolog.ErrorStackFieldName)
	rec.Fields = m
	return rec, nil
}

func pop(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	delete(m, key)
	if s, ok := v.(string); ok {
		return s, true
	}
	// Non-string values (structured errors/stacks) are rendered as JSON.
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return string(b), true
}

// Text renders the record body: the message, then the error and the stack
// on their own lines when present. Trailing newlines are trimmed.
func (r Record) Text() string {
	var b strings.Builder
	b.WriteString(r.Message)
	if r.Error != "" {
		b.WriteString("\n")
		b.WriteString(r.Error)
	}
	if r.Stack != "" {
		b.WriteString("\n")
		b.WriteString(r.Stack)
	}
	return strings.TrimRight(b.String(), "\n")
}

// HandleError is the default error hook for sinks. It reports a failed
// delivery on stderr and never logs through a Service, so a broken sink
// can't recurse into itself.
func HandleError(e Entry, err error) {
	name := e.Logger
	if name == "" {
		name = "root"
	}
	fmt.Fprintf(Stderr(), "logx: sink failed (logger=%s level=%s): %v\n", name, e.Level, err)
}
