// Package option provides the generic functional options type shared by
// the prober, the pinger and the printers.
package option

// Option represents a functional option that configures a value of type T.
type Option[T any] func(*T)

// Apply runs every option against v in order.
func Apply[T any](v *T, opts ...Option[T]) {
	for _, opt := range opts {
		opt(v)
	}
}
