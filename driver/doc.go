// Package driver provides the backends that open data sources for the registry.
//
// A Manager holds an ordered list of drivers and implements registry.Opener.
// Each open is dispatched to the first driver whose Identify accepts the
// source, the way a format library tries its drivers in turn:
//
//	mgr := driver.Default(ctx) // sqlite, wasm, file
//	defer mgr.Shutdown(ctx)
//
//	reg := registry.New(mgr)
//	defer reg.Close()
//
//	h, err := reg.OpenShared(ctx, "data/poly.gpkg", registry.ReadOnly)
//	db := h.Payload().(*driver.SQLite).DB
//
// # Drivers
//
//	sqlite  .gpkg .sqlite .sqlite3 .db or the SQLite header; payload *SQLite
//	wasm    .wasm or the \0asm magic, read-only; payload *Module
//	file    any existing path; payload *File
//
// Payloads are closed through io.Closer or Close(context.Context). Drivers
// holding shared state (the wasm runtime) are closed by Manager.Shutdown,
// which must run after the registry has released every payload.
package driver
