//go:build go1.21

package polyfill

import (
	"cmp"
	"slices"

	xmaps "golang.org/x/exp/maps"
)

func MapsKeys[M ~map[K]V, K comparable, V any](m M) []K { //nolint:ireturn
	// Added to 1.21 maps then removed again
	return xmaps.Keys(m)
}

func SlicesClone[S ~[]E, E any](s S) S { //nolint:ireturn
	return slices.Clone(s)
}

func SlicesSort[S ~[]E, E cmp.Ordered](x S) {
	slices.Sort(x)
}
