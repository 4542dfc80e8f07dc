package utils

// Ptr returns a pointer to a copy of v, for optional JSON fields that must encode as null when unset.
func Ptr[T any](v T) *T {
	return &v
}
