//go:build !go1.21

package polyfill

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func MapsKeys[M ~map[K]V, K comparable, V any](m M) []K { //nolint:ireturn
	return maps.Keys(m)
}

// Copied from go1.21 slices
func SlicesClone[S ~[]E, E any](s S) S { //nolint:ireturn
	if s == nil {
		return nil
	}

	return append(S([]E{}), s...)
}

func SlicesSort[E constraints.Ordered](x []E) {
	slices.Sort(x)
}
