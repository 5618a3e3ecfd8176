package framework

import (
	"golang.org/x/exp/slices"
)

// Capabilities is a list of strings naming optional operations that a testing engine backend
// supports. Callers can check it before invoking an operation that might otherwise fail with
// an UnsupportedOperationError.
type Capabilities []string

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	return slices.Contains(cs, name)
}

// Missing returns the names that do not appear in the list, in the order given.
func (cs Capabilities) Missing(names ...string) []string {
	var ret []string
	for _, n := range names {
		if !cs.Has(n) {
			ret = append(ret, n)
		}
	}
	return ret
}
