package main

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/nextgis-borsch/lib-gdal/errors"
	"github.com/nextgis-borsch/lib-gdal/registry"
)

type countingOpener struct {
	fail   string
	opens  int
	closes int
	mu     sync.Mutex
}

func (o *countingOpener) Open(ctx context.Context, id registry.Identifier) (any, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if id.Path == o.fail {
		return nil, stderrors.New("cannot open")
	}
	o.opens++
	return id.Path, nil
}

func (o *countingOpener) Close(payload any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closes++
	return nil
}

func ids(t *testing.T, paths ...string) []registry.Identifier {
	t.Helper()
	out := make([]registry.Identifier, len(paths))
	for i, p := range paths {
		id, err := registry.NewIdentifier(p, registry.ReadOnly)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = id
	}
	return out
}

func TestOpenAll(t *testing.T) {
	op := &countingOpener{}
	reg := registry.New(op)
	defer reg.Close()

	handles, err := openAll(context.Background(), reg, ids(t, "a.shp", "b.shp"), 3)
	if err != nil {
		t.Fatalf("openAll: %v", err)
	}
	if len(handles) != 6 {
		t.Fatalf("Expected 6 handles, got %d", len(handles))
	}
	if reg.OpenCount() != 2 {
		t.Fatalf("Expected 2 distinct sources, got %d", reg.OpenCount())
	}
	if op.opens != 2 {
		t.Fatalf("Expected 2 opener calls, got %d", op.opens)
	}
	for _, h := range handles {
		if h.RefCount() != 3 {
			t.Fatalf("Expected refcount 3, got %d", h.RefCount())
		}
	}

	if err := releaseAll(handles); err != nil {
		t.Fatalf("releaseAll: %v", err)
	}
	if reg.OpenCount() != 0 || op.closes != 2 {
		t.Fatalf("Expected everything closed, count=%d closes=%d", reg.OpenCount(), op.closes)
	}
}

func TestOpenAll_FailureReleasesAcquired(t *testing.T) {
	list := ids(t, "a.shp", "missing.shp")
	op := &countingOpener{fail: list[1].Path}
	reg := registry.New(op)
	defer reg.Close()

	_, err := openAll(context.Background(), reg, list, 2)
	if !stderrors.Is(err, errors.ErrOpen) {
		t.Fatalf("Expected open error, got %v", err)
	}
	if reg.OpenCount() != 0 {
		t.Fatalf("Expected acquired handles to be released, %d left", reg.OpenCount())
	}
	if op.opens != op.closes {
		t.Fatalf("opens=%d closes=%d", op.opens, op.closes)
	}
}
