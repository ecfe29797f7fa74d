package logx

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Entry is one log record as delivered to a Sink.
//
// Raw is the zerolog JSON line. It is a private copy; sinks share it and
// must not modify it.
type Entry struct {
	Level  Level
	Logger string
	Raw    []byte
}

// Sink receives records routed by a Service.
//
// Emit runs synchronously on the logging goroutine and must not return an
// error to the caller: a broken sink must never disrupt the application.
type Sink interface {
	Emit(e Entry)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Entry)

func (f SinkFunc) Emit(e Entry) { f(e) }

// SinkID identifies a registration made with Service.AddSink.
type SinkID uint64

type sinkReg struct {
	id   SinkID
	name string
	min  Level
	sink Sink
}

// sinkRouter is the zerolog sink side of a Service. It is part of every
// writer set built by Apply, so registrations survive reconfiguration.
type sinkRouter struct {
	mu    sync.RWMutex
	seq   SinkID
	sinks []sinkReg
}

func (r *sinkRouter) add(name string, min Level, s Sink) SinkID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.sinks = append(r.sinks, sinkReg{id: r.seq, name: cleanName(name), min: min, sink: s})
	return r.seq
}

func (r *sinkRouter) remove(id SinkID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, reg := range r.sinks {
		if reg.id == id {
			// keep registration order for the rest
			r.sinks = append(r.sinks[:i:i], r.sinks[i+1:]...)
			return true
		}
	}
	return false
}

func (r *sinkRouter) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}

func (r *sinkRouter) Write(p []byte) (int, error) {
	// Default to info when WriteLevel isn't used.
	return r.WriteLevel(zerolog.InfoLevel, p)
}

func (r *sinkRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	r.mu.RLock()
	if len(r.sinks) == 0 {
		r.mu.RUnlock()
		return len(p), nil
	}
	logger := loggerName(p)
	var targets []Sink
	for _, reg := range r.sinks {
		if level >= reg.min && covers(reg.name, logger) {
			targets = append(targets, reg.sink)
		}
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		return len(p), nil
	}

	// zerolog reuses p after Write returns.
	e := Entry{Level: level, Logger: logger, Raw: append([]byte(nil), p...)}
	for _, s := range targets {
		s.Emit(e)
	}
	return len(p), nil
}

// covers reports whether a sink registered on name receives records from logger.
func covers(name, logger string) bool {
	if name == "" {
		return true
	}
	return logger == name || strings.HasPrefix(logger, name+".")
}

// loggerName extracts the logger field from a JSON line. Lines that can't be
// decoded are treated as root records.
func loggerName(p []byte) string {
	var head struct {
		Logger string `json:"logger"`
	}
	if err := json.Unmarshal(bytesTrimSpace(p), &head); err != nil {
		return ""
	}
	return head.Logger
}

func bytesTrimSpace(b []byte) []byte {
	i := 0
	j := len(b)
	for i < j && (b[i] == ' ' || b[i] == '\n' || b[i] == '\r' || b[i] == '\t') {
		i++
	}
	for j > i && (b[j-1] == ' ' || b[j-1] == '\n' || b[j-1] == '\r' || b[j-1] == '\t') {
		j--
	}
	return b[i:j]
}
