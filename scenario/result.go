package scenario

import (
	"strings"
)

// Results is the outcome of a run: every scope that ran, and the ones that failed.
type Results struct {
	Tests    []Result
	Failures []Result
	Skipped  []ID
}

// Result is the outcome of one suite or scenario.
type Result struct {
	ID     ID
	Errors []error
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// ID is the path of a scope: the suite name, then the scenario name.
type ID []string

func (id ID) String() string {
	return strings.Join(id, "/")
}

func (id ID) Plus(name string) ID {
	return append(append(ID(nil), id...), name)
}
