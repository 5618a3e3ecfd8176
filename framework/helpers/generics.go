package helpers

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// IfElse returns valueIfTrue or valueIfFalse depending on isTrue.
func IfElse[V any](isTrue bool, valueIfTrue, valueIfFalse V) V {
	if isTrue {
		return valueIfTrue
	}
	return valueIfFalse
}

// Sorted returns a sorted copy of the slice.
func Sorted[V constraints.Ordered](values []V) []V {
	ret := slices.Clone(values)
	slices.Sort(ret)
	return ret
}

// Deduplicate returns the values in their original order with later duplicates removed.
func Deduplicate[V comparable](values []V) []V {
	seen := make(map[V]struct{}, len(values))
	ret := make([]V, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			ret = append(ret, v)
		}
	}
	return ret
}
