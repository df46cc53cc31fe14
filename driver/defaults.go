package driver

import (
	"context"

	"github.com/nextgis-borsch/lib-gdal/errors"
)

// DefaultOrder is the dispatch order used when none is configured.
// The file driver identifies everything and must stay last.
var DefaultOrder = []string{"sqlite", "wasm", "file"}

// Options configures drivers built by name.
type Options struct {
	Wasm WasmConfig
}

// ByName constructs a driver from its configuration name.
func ByName(ctx context.Context, name string, opts Options) (Driver, error) {
	switch name {
	case "file":
		return NewFile(), nil
	case "sqlite":
		return NewSQLite(), nil
	case "wasm":
		return NewWasm(ctx, &opts.Wasm), nil
	}
	return nil, errors.NotFound(errors.PhaseConfig, "driver", name)
}

// New builds a manager with the named drivers in order. An empty list
// means DefaultOrder.
func New(ctx context.Context, names []string, opts Options) (*Manager, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}

	m := NewManager()
	for _, name := range names {
		d, err := ByName(ctx, name, opts)
		if err == nil {
			err = m.Register(d)
		}
		if err != nil {
			m.Shutdown(ctx)
			return nil, err
		}
	}
	return m, nil
}

// Default builds a manager with DefaultOrder and default options.
func Default(ctx context.Context) *Manager {
	m, _ := New(ctx, DefaultOrder, Options{})
	return m
}
