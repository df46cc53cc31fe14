// Package gdal provides reference-counted shared opening of data sources.
//
// Repeated shared opens of the same path and access mode return one handle
// with an incremented reference count. The underlying source is closed when
// the last holder releases it. Live handles can be enumerated by index.
//
// # Architecture Overview
//
//	gdal/          Package-level API over a default registry
//	├── registry/  Shared handle registry, identifiers, scoped acquisition
//	├── driver/    Backends that open sources: sqlite, wasm, file
//	├── errors/    Structured error types
//	├── config/    YAML and environment configuration, logger setup
//	└── cmd/dsinfo Command-line inspector with an interactive mode
//
// # Quick Start
//
// Use an explicit registry:
//
//	mgr := driver.Default(ctx)
//	defer mgr.Shutdown(ctx)
//
//	reg := registry.New(mgr)
//	defer reg.Close()
//
//	ds, err := reg.OpenShared(ctx, "data/poly.gpkg", registry.ReadOnly)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ds.Release()
//
// Or the process-wide default:
//
//	ds1, _ := gdal.OpenShared(ctx, "data/idlink.dbf", registry.ReadOnly)
//	ds2, _ := gdal.OpenShared(ctx, "data/idlink.dbf", registry.ReadOnly)
//	fmt.Println(ds1 == ds2, ds1.RefCount()) // true 2
//	fmt.Println(gdal.GetOpenDSCount())      // 1
//	defer gdal.Cleanup()
//
// # Open Count and Reference Count
//
// GetOpenDSCount counts distinct handles. RefCount is per handle. Releasing
// a handle to zero removes it and shifts later indexes down.
//
// # Thread Safety
//
// Registry operations are safe for concurrent use. A single lock covers
// the existence check, the open and the refcount update, so concurrent
// opens of a new source construct it once.
package gdal
