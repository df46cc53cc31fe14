package driver

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nextgis-borsch/lib-gdal/errors"
	"github.com/nextgis-borsch/lib-gdal/registry"
)

var sqliteHeader = []byte("SQLite format 3\x00")

var sqliteExtensions = map[string]bool{
	".gpkg":    true,
	".sqlite":  true,
	".sqlite3": true,
	".db":      true,
}

// SQLiteDriver opens SQLite databases and GeoPackages through database/sql.
type SQLiteDriver struct{}

// NewSQLite creates the SQLite driver.
func NewSQLite() *SQLiteDriver {
	return &SQLiteDriver{}
}

func (*SQLiteDriver) Name() string { return "sqlite" }

// Identify accepts known extensions or any file starting with the SQLite header.
func (*SQLiteDriver) Identify(id registry.Identifier) bool {
	if sqliteExtensions[strings.ToLower(filepath.Ext(id.Path))] {
		return true
	}
	return hasPrefix(id.Path, sqliteHeader)
}

// Open connects in mode=ro or mode=rw. Missing files fail in both modes.
func (d *SQLiteDriver) Open(ctx context.Context, id registry.Identifier) (any, error) {
	mode := "ro"
	if id.Access == registry.Update {
		mode = "rw"
	}
	dsn := (&url.URL{Scheme: "file", Path: filepath.ToSlash(id.Path), RawQuery: "mode=" + mode}).String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.OpenFailed(id.Path, d.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.OpenFailed(id.Path, d.Name(), err)
	}

	var tables int
	err = db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master WHERE type = 'table'`).Scan(&tables)
	if err != nil {
		db.Close()
		return nil, errors.New(errors.PhaseOpen, errors.KindInvalidData).
			Source(id.Path).
			Driver(d.Name()).
			Cause(err).
			Detail("read schema").
			Build()
	}

	var gpkg int
	err = db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'gpkg_contents'`).Scan(&gpkg)
	if err != nil {
		db.Close()
		return nil, errors.OpenFailed(id.Path, d.Name(), err)
	}

	return &SQLite{DB: db, Tables: tables, GeoPackage: gpkg > 0}, nil
}

// SQLite is the payload of the sqlite driver.
type SQLite struct {
	DB         *sql.DB
	Tables     int
	GeoPackage bool
}

func (p *SQLite) Close() error {
	return p.DB.Close()
}

func (p *SQLite) Describe() string {
	if p.GeoPackage {
		return fmt.Sprintf("gpkg tables=%d", p.Tables)
	}
	return fmt.Sprintf("sqlite tables=%d", p.Tables)
}

// hasPrefix reports whether the file at path starts with magic.
func hasPrefix(path string, magic []byte) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, len(magic))
	n, _ := f.Read(buf)
	return n == len(magic) && bytes.Equal(buf, magic)
}
