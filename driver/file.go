package driver

import (
	"context"
	"fmt"
	"os"

	"github.com/nextgis-borsch/lib-gdal/errors"
	"github.com/nextgis-borsch/lib-gdal/registry"
)

// FileDriver opens any existing file or directory. It identifies everything,
// so it belongs last in the dispatch order.
type FileDriver struct{}

// NewFile creates the raw file driver.
func NewFile() *FileDriver {
	return &FileDriver{}
}

func (*FileDriver) Name() string { return "file" }

func (*FileDriver) Identify(registry.Identifier) bool { return true }

// Open opens the file read-only or read-write. Directories open read-only.
func (d *FileDriver) Open(ctx context.Context, id registry.Identifier) (any, error) {
	info, err := os.Stat(id.Path)
	if err != nil {
		return nil, errors.OpenFailed(id.Path, d.Name(), err)
	}

	if info.IsDir() {
		if id.Access == registry.Update {
			return nil, errors.Unsupported(errors.PhaseOpen, id.Path, "directories cannot be opened for update")
		}
		entries, err := os.ReadDir(id.Path)
		if err != nil {
			return nil, errors.OpenFailed(id.Path, d.Name(), err)
		}
		f, err := os.Open(id.Path)
		if err != nil {
			return nil, errors.OpenFailed(id.Path, d.Name(), err)
		}
		return &File{f: f, size: int64(len(entries)), dir: true, access: id.Access}, nil
	}

	flag := os.O_RDONLY
	if id.Access == registry.Update {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(id.Path, flag, 0)
	if err != nil {
		return nil, errors.OpenFailed(id.Path, d.Name(), err)
	}
	return &File{f: f, size: info.Size(), access: id.Access}, nil
}

// File is the payload of the file driver.
type File struct {
	f      *os.File
	size   int64
	dir    bool
	access registry.Access
}

// File returns the underlying descriptor. It stays owned by the payload.
func (p *File) File() *os.File { return p.f }

// Size is the byte size for files and the entry count for directories.
func (p *File) Size() int64 { return p.size }

// IsDir reports whether the source is a directory.
func (p *File) IsDir() bool { return p.dir }

// ReadAt reads from the file at off.
func (p *File) ReadAt(b []byte, off int64) (int, error) {
	return p.f.ReadAt(b, off)
}

// WriteAt writes to the file at off. It fails for read-only sources.
func (p *File) WriteAt(b []byte, off int64) (int, error) {
	if p.access != registry.Update {
		return 0, errors.Unsupported(errors.PhaseOpen, p.f.Name(), "source opened read-only")
	}
	return p.f.WriteAt(b, off)
}

func (p *File) Close() error {
	return p.f.Close()
}

func (p *File) Describe() string {
	if p.dir {
		return fmt.Sprintf("file dir entries=%d", p.size)
	}
	return fmt.Sprintf("file size=%d", p.size)
}
