package registry

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nextgis-borsch/lib-gdal/errors"
)

// Registry maps identifiers to reference-counted handles.
//
// A single mutex guards the identifier map, the enumeration order and every
// handle's refcount. OpenShared holds it across the Opener call so concurrent
// opens of an unseen identifier construct one payload.
type Registry struct {
	opener    Opener
	logger    *zap.Logger
	byID      map[Identifier]*Handle
	order     []*Handle
	observers []Observer
	obsMu     sync.RWMutex
	mu        sync.Mutex
	closed    bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver subscribes o before the registry is used.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, o)
	}
}

// New creates an empty registry backed by opener.
func New(opener Opener, opts ...Option) *Registry {
	r := &Registry{
		opener: opener,
		logger: Logger(),
		byID:   make(map[Identifier]*Handle),
		order:  make([]*Handle, 0, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenShared normalizes path and opens it shared; see OpenSharedID.
func (r *Registry) OpenShared(ctx context.Context, path string, access Access) (*Handle, error) {
	id, err := NewIdentifier(path, access)
	if err != nil {
		return nil, err
	}
	return r.OpenSharedID(ctx, id)
}

// OpenSharedID returns the live handle for id with its refcount incremented,
// or opens a new one with refcount 1 appended to the enumeration order.
// On failure the registry is left unchanged. Opener failures are reported
// as open_failed with the opener's error as the cause.
func (r *Registry) OpenSharedID(ctx context.Context, id Identifier) (*Handle, error) {
	h, ev, err := r.openLocked(ctx, id)
	if err != nil {
		r.logger.Debug("open failed", zap.String("path", id.Path), zap.Error(err))
		return nil, err
	}

	if ev.Type == EventReused {
		r.logger.Debug("reuse shared handle",
			zap.String("handle", h.uid),
			zap.String("path", id.Path),
			zap.Int("refcount", ev.RefCount))
	} else {
		r.logger.Debug("open shared handle",
			zap.String("handle", h.uid),
			zap.String("path", id.Path),
			zap.Stringer("access", id.Access))
	}
	r.notify(ev)
	return h, nil
}

func (r *Registry) openLocked(ctx context.Context, id Identifier) (*Handle, Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, Event{}, errors.Closed(errors.PhaseOpen, "registry")
	}

	if h, ok := r.byID[id]; ok {
		h.refs++
		return h, Event{Type: EventReused, Handle: h, Identifier: id, RefCount: h.refs}, nil
	}

	payload, err := r.opener.Open(ctx, id)
	if err != nil {
		return nil, Event{}, errors.AsOpenFailed(id.Path, "", err)
	}

	h := &Handle{
		payload:  payload,
		reg:      r,
		id:       id,
		uid:      handleID(),
		openedAt: time.Now(),
		refs:     1,
	}
	r.byID[id] = h
	r.order = append(r.order, h)
	return h, Event{Type: EventOpened, Handle: h, Identifier: id, RefCount: 1}, nil
}

// RefCount returns the current refcount of h. Closed handles report 0.
func (r *Registry) RefCount(h *Handle) int {
	if h == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return h.refs
}

// Reference increments the refcount of a live handle without calling the opener.
func (r *Registry) Reference(h *Handle) (int, error) {
	ev, err := r.referenceLocked(h)
	if err != nil {
		r.logger.Error("reference of unregistered handle", zap.Error(err))
		return 0, err
	}
	r.notify(ev)
	return ev.RefCount, nil
}

func (r *Registry) referenceLocked(h *Handle) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOwned(h, errors.PhaseReference); err != nil {
		return Event{}, err
	}
	h.refs++
	return Event{Type: EventReferenced, Handle: h, Identifier: h.id, RefCount: h.refs}, nil
}

// Release decrements the refcount of h. At zero the handle is removed from
// the registry, later handles shift down one index, and the payload is closed.
// Releasing a closed or foreign handle is an invariant violation.
func (r *Registry) Release(h *Handle) error {
	ev, err := r.releaseLocked(h)
	if ev.Handle == nil {
		r.logger.Error("release of unregistered handle", zap.Error(err))
		return err
	}

	if ev.Type == EventClosed {
		r.logger.Debug("close shared handle",
			zap.String("handle", h.uid),
			zap.String("path", h.id.Path),
			zap.Error(err))
	}
	r.notify(ev)
	return err
}

// releaseLocked returns the event to deliver and an error. A misuse error
// comes with a zero Event. The handle is unregistered before the payload is
// closed, so a panicking Close still leaves the registry consistent.
func (r *Registry) releaseLocked(h *Handle) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOwned(h, errors.PhaseRelease); err != nil {
		return Event{}, err
	}

	h.refs--
	if h.refs > 0 {
		return Event{Type: EventReleased, Handle: h, Identifier: h.id, RefCount: h.refs}, nil
	}

	r.remove(h)
	payload := h.payload
	h.payload = nil
	ev := Event{Type: EventClosed, Handle: h, Identifier: h.id}
	if err := r.opener.Close(payload); err != nil {
		return ev, errors.CloseFailed(errors.PhaseRelease, h.id.Path, err)
	}
	return ev, nil
}

func (r *Registry) checkOwned(h *Handle, phase errors.Phase) error {
	switch {
	case h == nil:
		return errors.InvariantViolation(phase, "", "nil handle")
	case h.reg != r:
		return errors.InvariantViolation(phase, h.id.Path, "handle belongs to another registry")
	case h.closed || h.refs <= 0:
		return errors.InvariantViolation(phase, h.id.Path, "handle already released (refcount 0)")
	}
	return nil
}

// remove unregisters h. Caller holds mu.
func (r *Registry) remove(h *Handle) {
	h.refs = 0
	h.closed = true
	delete(r.byID, h.id)
	for i, o := range r.order {
		if o == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// OpenCount returns the number of distinct live handles.
func (r *Registry) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// HandleAt returns the handle at index in insertion order.
func (r *Registry) HandleAt(index int) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.order) {
		return nil, errors.IndexOutOfRange(index, len(r.order))
	}
	return r.order[index], nil
}

// Lookup returns the live handle for id without changing its refcount.
func (r *Registry) Lookup(id Identifier) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	return h, ok
}

// Handles returns a snapshot of live handles in enumeration order.
func (r *Registry) Handles() []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Handle, len(r.order))
	copy(out, r.order)
	return out
}

// Close force-releases every live handle in reverse open order, regardless of
// refcount, and rejects further opens. Close errors are combined.
func (r *Registry) Close() error {
	handles, err := r.closeLocked()

	for i := len(handles) - 1; i >= 0; i-- {
		r.notify(Event{Type: EventClosed, Handle: handles[i], Identifier: handles[i].id})
	}
	if len(handles) > 0 {
		r.logger.Info("registry closed", zap.Int("handles", len(handles)), zap.Error(err))
	}
	return err
}

func (r *Registry) closeLocked() ([]*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, nil
	}
	r.closed = true

	handles := make([]*Handle, len(r.order))
	copy(handles, r.order)

	var err error
	for i := len(handles) - 1; i >= 0; i-- {
		h := handles[i]
		if h.refs > 1 {
			r.logger.Warn("closing handle with outstanding references",
				zap.String("handle", h.uid),
				zap.String("path", h.id.Path),
				zap.Int("refcount", h.refs))
		}
		r.remove(h)
		payload := h.payload
		h.payload = nil
		if cerr := r.opener.Close(payload); cerr != nil {
			err = multierr.Append(err, errors.CloseFailed(errors.PhaseClose, h.id.Path, cerr))
		}
	}
	return handles, err
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer. Observers of a non-comparable type,
// such as ObserverFunc, are ignored.
func (r *Registry) Unsubscribe(o Observer) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnHandleEvent(e)
	}
}
