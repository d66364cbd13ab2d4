// Package ptrx holds the two pointer helpers the SDK adapters need for
// optional request and response fields.
package ptrx

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v, treating nil as the zero value.
func Value[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
