package driver

import (
	"context"
	"io"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nextgis-borsch/lib-gdal/errors"
	"github.com/nextgis-borsch/lib-gdal/registry"
)

// Driver opens one family of data sources.
type Driver interface {
	// Name returns the short driver name used in configuration and errors.
	Name() string

	// Identify reports whether the driver can open id. It must be cheap:
	// an extension check or a header sniff.
	Identify(id registry.Identifier) bool

	// Open constructs the payload for id.
	Open(ctx context.Context, id registry.Identifier) (any, error)
}

// contextCloser is implemented by payloads and drivers whose teardown takes a context.
type contextCloser interface {
	Close(ctx context.Context) error
}

// Manager dispatches opens to the first registered driver that identifies
// the source. It implements registry.Opener.
type Manager struct {
	logger  *zap.Logger
	drivers []Driver
	mu      sync.RWMutex
}

var _ registry.Opener = (*Manager)(nil)

// NewManager creates a manager trying drivers in the given order.
func NewManager(drivers ...Driver) *Manager {
	return &Manager{
		logger:  zap.NewNop(),
		drivers: append([]Driver(nil), drivers...),
	}
}

// WithLogger sets the manager's logger and returns the manager.
func (m *Manager) WithLogger(l *zap.Logger) *Manager {
	if l != nil {
		m.logger = l
	}
	return m
}

// Register appends a driver. Names must be unique.
func (m *Manager) Register(d Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.drivers {
		if existing.Name() == d.Name() {
			return errors.InvalidInput(errors.PhaseConfig, "driver "+d.Name()+" already registered")
		}
	}
	m.drivers = append(m.drivers, d)
	return nil
}

// Driver returns the registered driver with the given name.
func (m *Manager) Driver(name string) (Driver, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Names returns driver names in dispatch order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.drivers))
	for i, d := range m.drivers {
		names[i] = d.Name()
	}
	return names
}

// Identify returns the driver that would open id.
func (m *Manager) Identify(id registry.Identifier) (Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Identify(id) {
			return d, nil
		}
	}
	return nil, errors.Unsupported(errors.PhaseOpen, id.Path, "no driver recognizes the data source")
}

// Open implements registry.Opener. Every failure is an open_failed error;
// a driver's own error is kept as its cause.
func (m *Manager) Open(ctx context.Context, id registry.Identifier) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.OpenFailed(id.Path, "", err)
	}

	d, err := m.Identify(id)
	if err != nil {
		return nil, errors.AsOpenFailed(id.Path, "", err)
	}

	payload, err := d.Open(ctx, id)
	if err != nil {
		m.logger.Debug("driver open failed",
			zap.String("driver", d.Name()),
			zap.String("path", id.Path),
			zap.Error(err))
		return nil, errors.AsOpenFailed(id.Path, d.Name(), err)
	}

	m.logger.Debug("driver opened source",
		zap.String("driver", d.Name()),
		zap.String("path", id.Path),
		zap.Stringer("access", id.Access))
	return payload, nil
}

// Close implements registry.Opener.
func (m *Manager) Close(payload any) error {
	switch p := payload.(type) {
	case contextCloser:
		return p.Close(context.Background())
	case io.Closer:
		return p.Close()
	}
	return nil
}

// Shutdown closes drivers that hold shared state. Payloads must already be
// closed, typically by closing the registry first.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var err error
	for _, d := range m.drivers {
		switch c := d.(type) {
		case contextCloser:
			err = multierr.Append(err, c.Close(ctx))
		case io.Closer:
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
