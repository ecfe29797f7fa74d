package app

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/ustudio/datadog-logger/internal/config"
	"github.com/ustudio/datadog-logger/internal/datadog"
	"github.com/ustudio/datadog-logger/internal/runtime/supervisor"
	"github.com/ustudio/datadog-logger/pkg/ddlog"
	logx "github.com/ustudio/datadog-logger/pkg/logx"
)

// ClientFactory builds the event client for a config.
type ClientFactory func(cfg *config.Config) (ddlog.EventCreator, error)

// DefaultClientFactory returns a Datadog Events API client.
func DefaultClientFactory(cfg *config.Config) (ddlog.EventCreator, error) {
	return datadog.New(datadog.Config{
		APIKey:   cfg.Datadog.APIKey,
		AppKey:   cfg.Datadog.AppKey,
		Site:     cfg.Datadog.Site,
		Timeout:  cfg.Timeout(),
		Endpoint: cfg.Datadog.Endpoint,
	})
}

type Option func(*App)

// WithClientFactory replaces DefaultClientFactory.
func WithClientFactory(fn ClientFactory) Option {
	return func(a *App) {
		if fn != nil {
			a.newClient = fn
		}
	}
}

// WithLogOutput sends console logs to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithErrorHandler overrides the handler's failure hook.
func WithErrorHandler(fn ddlog.ErrorHandler) Option {
	return func(a *App) { a.onError = fn }
}

type App struct {
	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	newClient ClientFactory
	out       io.Writer
	onError   ddlog.ErrorHandler

	mu  sync.Mutex
	reg *ddlog.Registration
}

func New(cfgPath string, opts ...Option) (*App, error) {
	a := &App{newClient: DefaultClientFactory}
	for _, o := range opts {
		o(a)
	}

	a.cfgm = config.NewConfigManager(cfgPath)
	cfg, err := a.cfgm.Load()
	if err != nil {
		return nil, err
	}

	a.logs, _ = logx.New(a.logConfig(cfg))
	a.log = a.logs.Named("ddlogger.app")

	reg, err := a.register(cfg)
	if err != nil {
		_ = a.logs.Close()
		return nil, err
	}
	a.reg = reg
	a.log.Debug("event handler registered",
		logx.String("events_logger", cfg.Events.Logger),
		logx.String("min_level", cfg.MinLevel().String()),
	)
	return a, nil
}

// Logs is the logging service records are written through.
func (a *App) Logs() *logx.Service { return a.logs }

func (a *App) Logger() logx.Logger { return a.log }

// Registration is the currently attached event handler.
func (a *App) Registration() *ddlog.Registration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reg
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) logConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Out: a.out,
	}
}

func (a *App) handlerOptions(cfg *config.Config) []ddlog.Option {
	opts := []ddlog.Option{
		ddlog.WithMentions(cfg.Events.Mentions...),
		ddlog.WithRateLimit(cfg.Events.RatePerSec),
	}
	if cfg.Events.Tags != nil {
		opts = append(opts, ddlog.WithTags(cfg.Events.Tags...))
	}
	if a.onError != nil {
		opts = append(opts, ddlog.WithErrorHandler(a.onError))
	}
	return opts
}

func (a *App) register(cfg *config.Config) (*ddlog.Registration, error) {
	client, err := a.newClient(cfg)
	if err != nil {
		return nil, err
	}
	return ddlog.RegisterAt(a.logs, cfg.Events.Logger, cfg.MinLevel(), client, a.handlerOptions(cfg)...)
}

// reattach swaps the registration for one built from cfg. The old one stays
// attached when the new client can't be built.
func (a *App) reattach(cfg *config.Config) error {
	client, err := a.newClient(cfg)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_ = a.reg.Close()
	reg, err := ddlog.RegisterAt(a.logs, cfg.Events.Logger, cfg.MinLevel(), client, a.handlerOptions(cfg)...)
	if err != nil {
		a.reg = nil
		return err
	}
	a.reg = reg
	return nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.NewSupervisor(ctx,
		supervisor.WithLogger(a.logs.Named("ddlogger.supervisor")),
		supervisor.WithCancelOnError(true),
	)

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.logs.Named("ddlogger.config"))
	a.cfgm.SetValidator(func(c context.Context, cfg *config.Config) error {
		_, err := a.newClient(cfg)
		return err
	})

	// Snapshot before the goroutine runs: a reload may publish first.
	sub := a.cfgm.Subscribe(8)
	lastApplied := a.cfgm.Get()
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-c.Done():
				return nil
			case newCfg, ok := <-sub:
				if !ok {
					return nil
				}
				// Coalesce bursts: keep only the latest config in the channel.
				for drained := false; !drained; {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						drained = true
					}
				}
				a.apply(lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.Go("config.watch", a.cfgm.Watch)
	a.log.Info("started", logx.String("config", a.cfgm.Path()))
	return nil
}

func (a *App) apply(oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Debug("config reload received, but no effective changes detected")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config change summary", fields...)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		a.logs.Apply(a.logConfig(newCfg))
	}
	if reflect.DeepEqual(oldCfg.Datadog, newCfg.Datadog) && reflect.DeepEqual(oldCfg.Events, newCfg.Events) {
		return
	}
	if err := a.reattach(newCfg); err != nil {
		a.log.Warn("event handler not replaced; keeping previous", logx.Err(err))
		return
	}
	a.log.Info("event handler replaced",
		logx.String("events_logger", newCfg.Events.Logger),
		logx.String("min_level", newCfg.MinLevel().String()),
	)
}

// Stop stops background work, detaches the handler and closes log files.
func (a *App) Stop(ctx context.Context) error {
	var errs []error
	if a.sup != nil {
		if err := a.sup.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.mu.Lock()
	if err := a.reg.Close(); err != nil {
		errs = append(errs, err)
	}
	a.reg = nil
	a.mu.Unlock()
	if err := a.logs.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
