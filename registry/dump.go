package registry

import (
	"fmt"
	"io"
)

// Dump writes one line per live handle in enumeration order:
//
//	[index] access refcount instance-id path description
//
// It returns the number of handles written.
func (r *Registry) Dump(w io.Writer) (int, error) {
	type row struct {
		h       *Handle
		payload any
		refs    int
	}

	r.mu.Lock()
	rows := make([]row, len(r.order))
	for i, h := range r.order {
		rows[i] = row{h: h, payload: h.payload, refs: h.refs}
	}
	r.mu.Unlock()

	if len(rows) == 0 {
		return 0, nil
	}

	if _, err := fmt.Fprintf(w, "Open shared data sources (%d):\n", len(rows)); err != nil {
		return 0, err
	}
	for i, rw := range rows {
		desc := ""
		if d, ok := rw.payload.(Describer); ok {
			desc = " " + d.Describe()
		}
		_, err := fmt.Fprintf(w, "  [%d] %s %d %s %s%s\n",
			i, rw.h.id.Access.Short(), rw.refs, rw.h.uid, rw.h.id.Path, desc)
		if err != nil {
			return i, err
		}
	}
	return len(rows), nil
}
