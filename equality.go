package reactivemodel

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// valuesEqual is the engine's deep-equality collaborator for deciding
// whether a candidate value actually changes a field. It prefers
// [cmp.Equal]; cmp panics on types carrying unexported fields it can't
// traverse (arbitrary caller-supplied field values make that unavoidable
// here), so a panic from cmp.Equal (that one or any other) is recovered and
// reflect.DeepEqual is used for that one comparison instead.
func valuesEqual(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = reflect.DeepEqual(a, b)
		}
	}()
	return cmp.Equal(a, b)
}
