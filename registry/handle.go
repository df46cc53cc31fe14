package registry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nextgis-borsch/lib-gdal/errors"
)

var handleCounter atomic.Uint64

// handleID returns a unique identifier for one handle instance.
// The counter part is for humans reading dumps, the UUID for correlating logs.
func handleID() string {
	return fmt.Sprintf("#%d %s", handleCounter.Add(1), uuid.NewString())
}

// Handle is one logical open connection to a data source. It owns the
// payload returned by the Opener and is shared by every holder that opened
// the same Identifier.
//
// refs and closed are guarded by the owning registry's mutex.
type Handle struct {
	payload  any
	reg      *Registry
	id       Identifier
	uid      string
	openedAt time.Time
	refs     int
	closed   bool
}

// Identifier returns the key the handle is registered under.
func (h *Handle) Identifier() Identifier {
	return h.id
}

// ID returns the instance ID. A re-open after a full release gets a new ID.
func (h *Handle) ID() string {
	return h.uid
}

// Payload returns the backend state constructed by the Opener.
func (h *Handle) Payload() any {
	return h.payload
}

// OpenedAt returns when the payload was constructed.
func (h *Handle) OpenedAt() time.Time {
	return h.openedAt
}

// RefCount returns the number of outstanding holders. A nil handle has none.
func (h *Handle) RefCount() int {
	if h == nil {
		return 0
	}
	return h.reg.RefCount(h)
}

// Release drops one reference; see Registry.Release.
func (h *Handle) Release() error {
	if h == nil {
		return errors.InvariantViolation(errors.PhaseRelease, "", "nil handle")
	}
	return h.reg.Release(h)
}

// Reference adds a reference without reopening; see Registry.Reference.
func (h *Handle) Reference() (int, error) {
	if h == nil {
		return 0, errors.InvariantViolation(errors.PhaseReference, "", "nil handle")
	}
	return h.reg.Reference(h)
}

// Closed reports whether the handle reached refcount zero. A nil handle
// counts as closed.
func (h *Handle) Closed() bool {
	if h == nil {
		return true
	}
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	return h.closed
}

func (h *Handle) String() string {
	return h.uid + " " + h.id.String()
}
