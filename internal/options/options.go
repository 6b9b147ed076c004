// Package options provides generic functional options shared by the reader
// and the builder.
package options

// Option configures a target of type T, usually a pointer to an unexported
// config struct.
type Option[T any] interface {
	apply(T) error
}

type funcOption[T any] struct {
	fn func(T) error
}

func (o funcOption[T]) apply(target T) error {
	return o.fn(target)
}

// New returns an Option backed by fn. An error from fn aborts Apply.
func New[T any](fn func(T) error) Option[T] {
	return funcOption[T]{fn: fn}
}

// NoError returns an Option backed by a function that cannot fail.
func NoError[T any](fn func(T)) Option[T] {
	return funcOption[T]{fn: func(target T) error {
		fn(target)
		return nil
	}}
}

// Apply applies opts to target in order and stops at the first error.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
