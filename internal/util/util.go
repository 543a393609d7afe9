package util

import "reflect"

// IsZeroVal reports whether v holds its type's zero value.
// Used for config merging: zero override values keep the defaults.
func IsZeroVal(v reflect.Value) bool {
	return v.Interface() == reflect.Zero(v.Type()).Interface()
}

// Unwrap returns the underlying error of stackerr-like wrappers,
// or err itself if it wraps nothing.
func Unwrap(err error) error {
	type hasUnderlying interface {
		Underlying() error
	}
	for {
		eh, ok := err.(hasUnderlying)
		if !ok {
			return err
		}
		err = eh.Underlying()
	}
}
