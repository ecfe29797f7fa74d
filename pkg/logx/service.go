package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ---- Config ----

type Config struct {
	Level   string
	Console bool
	File    FileConfig

	// Out overrides stdout for the console writer.
	Out io.Writer
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// ---- Service (dynamic config + sinks) ----

type Service struct {
	mu  sync.Mutex
	cfg Config

	root atomic.Value // stores zerolog.Logger

	file *os.File

	sinks *sinkRouter
}

// New creates the logging service, applies the initial config immediately,
// and returns both the Service and a root Logger.
func New(cfg Config) (*Service, Logger) {
	s := &Service{
		cfg:   cfg,
		sinks: &sinkRouter{},
	}
	s.Apply(cfg)
	return s, Logger{svc: s}
}

func (s *Service) current() zerolog.Logger {
	v := s.root.Load()
	if v == nil {
		return zerolog.Nop()
	}
	zl, ok := v.(zerolog.Logger)
	if !ok {
		return zerolog.Nop()
	}
	return zl
}

// Logger returns the root logger.
func (s *Service) Logger() Logger { return Logger{svc: s} }

// Named returns the logger with the given absolute dotted name
// ("" is the root logger).
func (s *Service) Named(name string) Logger { return s.Logger().Named(name) }

// AddSink attaches sink to the logger called name (and its descendants).
// Only records at or above min are delivered.
func (s *Service) AddSink(name string, min Level, sink Sink) SinkID {
	if sink == nil {
		return 0
	}
	return s.sinks.add(name, min, sink)
}

// RemoveSink detaches a sink. It reports whether id was registered.
func (s *Service) RemoveSink(id SinkID) bool { return s.sinks.remove(id) }

// Sinks returns the number of attached sinks.
func (s *Service) Sinks() int { return s.sinks.len() }

func (s *Service) Close() error {
	s.mu.Lock()
	f := s.file
	s.file = nil
	s.mu.Unlock()

	if f != nil {
		return f.Close()
	}
	return nil
}

// Apply swaps logger outputs/levels at runtime. Sinks are kept.
// It is safe to call concurrently.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg

	// Close previous file (if any).
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	lvl := ParseLevel(cfg.Level, zerolog.InfoLevel)
	out := cfg.Out
	if out == nil {
		out = Stdout()
	}

	writers := make([]io.Writer, 0, 3)
	if cfg.Console {
		writers = append(writers, newConsoleWriter(out))
	}
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = "./ddlogger.log"
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(Stderr(), "logx: failed opening log file %q: %v\n", path, err)
		} else {
			s.file = f
			writers = append(writers, zerolog.SyncWriter(f))
		}
	}

	if len(writers) == 0 {
		writers = append(writers, newConsoleWriter(out))
	}
	writers = append(writers, s.sinks)

	mw := zerolog.MultiLevelWriter(writers...)
	zl := zerolog.New(mw).Level(lvl).With().Timestamp().Logger()
	// Store as current root.
	s.root.Store(zl)
}
