package core

// Result holds either the value of a successful analysis or the error that
// stopped it. The zero Result is not meaningful; use Ok or Err.
type Result[T any] struct {
	value T
	err   *AnalysisError
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Err[T any](err *AnalysisError) Result[T] {
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the success value, or the zero value of T on failure.
func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() *AnalysisError {
	return r.err
}

// Unwrap converts the result into Go's usual (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
