package locator

import (
	"github.com/webunit/testing-engine/framework"
)

// Finder evaluates XPath expressions against one backend's view of the current scope. N is
// the backend's node type.
type Finder[N any] interface {
	// FindAll evaluates an expression against the scope root (the frame document, or the
	// working form when one is set) and returns the matches in document order.
	FindAll(xpath string) ([]N, error)

	// FindFrom evaluates an expression with node as the context node.
	FindFrom(node N, xpath string) ([]N, error)

	// Attribute returns the value of an attribute of node.
	Attribute(node N, name string) (string, bool, error)
}

// Resolve finds the single element described by l. See Locator.Pick for the rules.
func Resolve[N any](f Finder[N], l Locator) (N, error) {
	var zero N
	nodes, err := f.FindAll(l.XPath("."))
	if err != nil {
		return zero, err
	}
	i, err := l.Pick(len(nodes))
	if err != nil {
		return zero, err
	}
	return nodes[i], nil
}

// ResolveAll returns every element described by l, or only the indexed one if l has an index.
// Zero matches is not an error.
func ResolveAll[N any](f Finder[N], l Locator) ([]N, error) {
	nodes, err := f.FindAll(l.XPath("."))
	if err != nil {
		return nil, err
	}
	if l.index.IsDefined() {
		i := l.index.Value()
		if i < 0 || i >= len(nodes) {
			return nil, nil
		}
		return nodes[i : i+1], nil
	}
	return nodes, nil
}

// Exists returns true if l would resolve to at least one element. An index beyond the number
// of matches counts as absent.
func Exists[N any](f Finder[N], l Locator) (bool, error) {
	nodes, err := ResolveAll(f, l)
	return len(nodes) > 0, err
}

// ResolveLabel finds the control associated with the label text. The label itself must match
// exactly once; then each strategy is tried in order and the first one that finds a control
// wins.
func ResolveLabel[N any](f Finder[N], lq Label) (N, error) {
	var zero N
	labels, err := f.FindAll(lq.LabelXPath("."))
	if err != nil {
		return zero, err
	}
	switch {
	case len(labels) == 0:
		return zero, framework.ElementNotFoundError{Locator: lq.String(), Detail: "no such label"}
	case len(labels) > 1:
		return zero, framework.AmbiguousLocatorError{Locator: lq.String(), Count: len(labels)}
	}
	label := labels[0]

	for _, s := range lq.strategies {
		var nodes []N
		switch s {
		case AssociationFor:
			forID, ok, err := f.Attribute(label, "for")
			if err != nil {
				return zero, err
			}
			if !ok || forID == "" {
				continue
			}
			nodes, err = f.FindAll(lq.control.WithAttribute("id", forID).XPath("."))
			if err != nil {
				return zero, err
			}
		default:
			nodes, err = f.FindFrom(label, lq.ControlXPath(s))
			if err != nil {
				return zero, err
			}
		}
		if len(nodes) == 0 {
			continue
		}
		i, err := lq.control.Pick(len(nodes))
		if err != nil {
			return zero, err
		}
		return nodes[i], nil
	}
	return zero, framework.ElementNotFoundError{Locator: lq.String(), Detail: "no control associated with label"}
}
