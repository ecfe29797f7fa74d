package ddlog

import (
	"sync"

	"github.com/ustudio/datadog-logger/pkg/logx"
)

// Registration is a Handler attached to a logx.Service.
type Registration struct {
	svc  *logx.Service
	id   logx.SinkID
	once sync.Once
}

// Register attaches a Handler for error-and-above records on the logger
// called name ("" is the root logger) and its descendants.
func Register(svc *logx.Service, name string, client EventCreator, opts ...Option) (*Registration, error) {
	return RegisterAt(svc, name, logx.LevelError, client, opts...)
}

// RegisterAt is Register with an explicit minimum level.
func RegisterAt(svc *logx.Service, name string, min logx.Level, client EventCreator, opts ...Option) (*Registration, error) {
	h, err := NewHandler(client, opts...)
	if err != nil {
		return nil, err
	}
	return &Registration{svc: svc, id: svc.AddSink(name, min, h)}, nil
}

// Close detaches the handler. It is safe to call more than once.
func (r *Registration) Close() error {
	if r == nil {
		return nil
	}
	r.once.Do(func() { r.svc.RemoveSink(r.id) })
	return nil
}
