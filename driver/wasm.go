package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"

	"github.com/nextgis-borsch/lib-gdal/errors"
	"github.com/nextgis-borsch/lib-gdal/registry"
)

var wasmMagic = []byte{0x00, 'a', 's', 'm'}

// WasmConfig holds configuration for the wasm driver runtime.
type WasmConfig struct {
	// MemoryLimitPages caps linear memory per instance in 64KB pages.
	// 0 keeps the wazero default.
	MemoryLimitPages uint32
}

// WasmDriver compiles WebAssembly modules with a single shared wazero
// runtime. Sharing a compiled module between holders avoids recompiling it.
type WasmDriver struct {
	runtime wazero.Runtime
	mu      sync.RWMutex
	closed  bool
}

// NewWasm creates the wasm driver and its runtime.
func NewWasm(ctx context.Context, cfg *WasmConfig) *WasmDriver {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &WasmDriver{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}
}

func (*WasmDriver) Name() string { return "wasm" }

func (*WasmDriver) Identify(id registry.Identifier) bool {
	if strings.EqualFold(filepath.Ext(id.Path), ".wasm") {
		return true
	}
	return hasPrefix(id.Path, wasmMagic)
}

// Open compiles the module. Compiled modules are immutable, so update
// access is rejected.
func (d *WasmDriver) Open(ctx context.Context, id registry.Identifier) (any, error) {
	if id.Access == registry.Update {
		return nil, errors.Unsupported(errors.PhaseOpen, id.Path, "wasm modules are read-only")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, errors.Closed(errors.PhaseOpen, "wasm driver")
	}

	data, err := os.ReadFile(id.Path)
	if err != nil {
		return nil, errors.OpenFailed(id.Path, d.Name(), err)
	}

	compiled, err := d.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.New(errors.PhaseOpen, errors.KindInvalidData).
			Source(id.Path).
			Driver(d.Name()).
			Cause(err).
			Detail("compile module").
			Build()
	}

	exports := make([]string, 0, len(compiled.ExportedFunctions()))
	for name := range compiled.ExportedFunctions() {
		exports = append(exports, name)
	}
	sort.Strings(exports)

	return &Module{Compiled: compiled, Exports: exports, Size: len(data)}, nil
}

// Close closes the runtime. Modules compiled by it become unusable.
func (d *WasmDriver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.runtime.Close(ctx)
}

// Module is the payload of the wasm driver.
type Module struct {
	Compiled wazero.CompiledModule
	Exports  []string
	Size     int
}

func (m *Module) Close(ctx context.Context) error {
	return m.Compiled.Close(ctx)
}

func (m *Module) Describe() string {
	return fmt.Sprintf("wasm size=%d exports=%d", m.Size, len(m.Exports))
}
