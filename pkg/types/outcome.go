// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Outcome is the result of one pipeline stage. Value always holds a
// well-typed value: the real output on success, or the stage's fallback when
// the stage degraded. Cause is nil on success and records why the stage fell
// back otherwise.
type Outcome[T any] struct {
	Value T
	Cause error
}

// Succeeded wraps a clean stage result.
func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degraded wraps a fallback value together with the error that forced it.
func Degraded[T any](fallback T, cause error) Outcome[T] {
	return Outcome[T]{Value: fallback, Cause: cause}
}

// Degraded reports whether the stage returned its fallback value.
func (o Outcome[T]) Degraded() bool {
	return o.Cause != nil
}
