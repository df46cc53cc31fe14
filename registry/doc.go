// Package registry provides reference-counted shared handles for opened data sources.
//
// A Registry maps an Identifier (normalized path plus access mode) to a single
// Handle. Opening the same identifier again returns the same Handle with its
// refcount incremented; releasing decrements it, and the payload is closed
// when the count reaches zero.
//
// # Handle Lifecycle
//
//	UNOPENED -> OPEN(1) -> OPEN(n) -> ... -> OPEN(1) -> CLOSED
//
// CLOSED is terminal. A later OpenShared of the same identifier creates a new
// Handle with a new instance ID.
//
//	reg := registry.New(opener)
//	defer reg.Close()
//
//	a, err := reg.OpenShared(ctx, "data/poly.gpkg", registry.ReadOnly)
//	if err != nil {
//	    return err
//	}
//	b, _ := reg.OpenShared(ctx, "data/poly.gpkg", registry.ReadOnly)
//	// a == b, a.RefCount() == 2
//
//	a.Release() // refcount 1
//	b.Release() // closed, removed from the registry
//
// # Open Count and Refcount
//
// OpenCount reports distinct live handles, not the sum of refcounts.
// HandleAt enumerates live handles in insertion order; removing a handle
// shifts later handles down by one.
//
// # Scoped Acquisition
//
// With releases on every exit path, including panics:
//
//	err := reg.With(ctx, path, registry.ReadOnly, func(h *registry.Handle) error {
//	    return use(h.Payload())
//	})
//
// # Backends
//
// The Opener constructs and closes payloads. The registry calls Open at most
// once per live identifier and Close exactly once per payload. Open and Close
// run under the registry lock.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	reg.Subscribe(registry.ObserverFunc(func(e registry.Event) {
//	    log.Printf("%s %s refcount=%d", e.Type, e.Identifier, e.RefCount)
//	}))
//
// # Errors
//
// Failures are *errors.Error values from this module's errors package:
// open failures match errors.ErrOpen, double release matches
// errors.ErrInvariant, bad indexes match errors.ErrOutOfRange.
package registry
