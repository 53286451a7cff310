package domain

import "fmt"

// Result is the outcome of a repository or service call: either a value or an AppError.
// Expected failures (not found, rule violations, driver errors) travel as a failed Result;
// nothing in the core panics for them.
type Result[T any] struct {
	value T
	err   *AppError
}

// Ok returns a successful Result holding v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail returns a failed Result. A nil err is recorded as an internal failure so a
// failed Result never reports success.
func Fail[T any](err *AppError) Result[T] {
	if err == nil {
		err = NewInternalServerError("unknown failure")
	}
	return Result[T]{err: err}
}

// Propagate re-types a failed Result. It must only be called on failures.
func Propagate[U, T any](r Result[T]) Result[U] {
	return Fail[U](r.err)
}

func (r Result[T]) IsSuccess() bool { return r.err == nil }

func (r Result[T]) IsFailure() bool { return r.err != nil }

// Value returns the success value, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() *AppError { return r.err }

// Unwrap returns the Result in Go's (value, error) form.
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Recover turns a panic in the deferring method into a DatabaseError result.
// Use it as: defer domain.Recover(&res) with a named Result return.
func Recover[T any](res *Result[T]) {
	if p := recover(); p != nil {
		*res = Fail[T](NewDatabaseError(fmt.Sprint(p)))
	}
}
