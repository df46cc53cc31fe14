package registry

import (
	"context"

	"go.uber.org/multierr"
)

// With opens path shared, runs fn with the handle and releases it on every
// exit path. A panic in fn still releases the handle before propagating.
// Errors from fn and from the release are combined.
func (r *Registry) With(ctx context.Context, path string, access Access, fn func(*Handle) error) (err error) {
	h, err := r.OpenShared(ctx, path, access)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = r.Release(h)
			panic(p)
		}
		err = multierr.Append(err, r.Release(h))
	}()

	return fn(h)
}
