package utils

import (
	"fmt"

	"github.com/cubicletools/ctc/pkg/errors"
)

// ToStringListPermissive renders every element of a list as a string,
// accepting scalars of any type.
func ToStringListPermissive(v any) ([]string, error) {
	v2, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%T: %w", v, errors.ErrInvalidType)
	}

	ret := []string{}
	for _, v3 := range v2 {
		ret = append(ret, fmt.Sprintf("%v", v3))
	}

	return ret, nil
}
