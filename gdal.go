package gdal

import (
	"context"
	"io"
	"sync"

	"go.uber.org/multierr"

	"github.com/nextgis-borsch/lib-gdal/driver"
	"github.com/nextgis-borsch/lib-gdal/registry"
)

var (
	defaultMu       sync.Mutex
	defaultRegistry *registry.Registry
	defaultManager  *driver.Manager
)

// Default returns the process-wide registry, creating it with the default
// drivers on first use. After Cleanup a new one is created on demand.
func Default() *registry.Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultManager = driver.Default(context.Background())
		defaultRegistry = registry.New(defaultManager)
	}
	return defaultRegistry
}

// OpenShared opens path in the default registry, reusing a live handle for
// the same path and access mode.
func OpenShared(ctx context.Context, path string, access registry.Access) (*registry.Handle, error) {
	return Default().OpenShared(ctx, path, access)
}

// GetOpenDSCount returns the number of distinct live handles in the default registry.
func GetOpenDSCount() int {
	return Default().OpenCount()
}

// GetOpenDS returns the live handle at index in the default registry.
func GetOpenDS(index int) (*registry.Handle, error) {
	return Default().HandleAt(index)
}

// DumpOpenDatasets writes the default registry's live handles to w.
func DumpOpenDatasets(w io.Writer) (int, error) {
	return Default().Dump(w)
}

// Cleanup force-closes every handle in the default registry and shuts the
// drivers down. Call it once at process exit.
func Cleanup() error {
	defaultMu.Lock()
	reg, mgr := defaultRegistry, defaultManager
	defaultRegistry, defaultManager = nil, nil
	defaultMu.Unlock()

	if reg == nil {
		return nil
	}
	err := reg.Close()
	return multierr.Append(err, mgr.Shutdown(context.Background()))
}
