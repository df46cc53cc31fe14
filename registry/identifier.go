package registry

import (
	"path/filepath"
	"strings"

	"github.com/nextgis-borsch/lib-gdal/errors"
)

// Access is the mode a data source is opened in.
type Access uint8

const (
	ReadOnly Access = iota
	Update
)

func (a Access) String() string {
	if a == Update {
		return "update"
	}
	return "readonly"
}

// Short returns the one-letter form used in dumps.
func (a Access) Short() string {
	if a == Update {
		return "U"
	}
	return "R"
}

// ParseAccess converts a textual access mode to Access.
func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "r", "ro", "readonly", "read-only":
		return ReadOnly, nil
	case "u", "rw", "update":
		return Update, nil
	}
	return ReadOnly, errors.InvalidInput(errors.PhaseOpen, "unknown access mode "+s)
}

// Identifier is the registry key for a shared data source.
// Two identifiers are equal when their normalized paths and access modes match.
type Identifier struct {
	Path   string
	Access Access
}

// NewIdentifier normalizes path into an Identifier. The path is made absolute
// and cleaned; symlinks are resolved when the target exists.
func NewIdentifier(path string, access Access) (Identifier, error) {
	if path == "" {
		return Identifier{}, errors.InvalidInput(errors.PhaseOpen, "empty data source path")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Identifier{}, errors.New(errors.PhaseOpen, errors.KindInvalidInput).
			Source(path).
			Cause(err).
			Detail("resolve absolute path").
			Build()
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	return Identifier{Path: filepath.Clean(abs), Access: access}, nil
}

func (id Identifier) String() string {
	return id.Path + " (" + id.Access.String() + ")"
}
