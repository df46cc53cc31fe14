package main

import (
	"context"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/nextgis-borsch/lib-gdal/registry"
)

// openAll opens every identifier repeat times concurrently. On failure the
// handles already acquired are released and the first error is returned.
func openAll(ctx context.Context, reg *registry.Registry, ids []registry.Identifier, repeat int) ([]*registry.Handle, error) {
	handles := make([]*registry.Handle, len(ids)*repeat)

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		for r := 0; r < repeat; r++ {
			slot := i*repeat + r
			id := id
			g.Go(func() error {
				h, err := reg.OpenSharedID(gctx, id)
				if err != nil {
					return err
				}
				handles[slot] = h
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		for _, h := range handles {
			if h != nil {
				h.Release()
			}
		}
		return nil, err
	}
	return handles, nil
}

// releaseAll drops one reference per handle.
func releaseAll(handles []*registry.Handle) error {
	var err error
	for _, h := range handles {
		err = multierr.Append(err, h.Release())
	}
	return err
}
