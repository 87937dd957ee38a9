// Package except provides small panic/recover helpers used inside the
// compilation pipeline so that internal invariant violations read as a
// thrown value instead of an error threaded through every mutation.
//
// A panic raised with Throw/Assert must always be recovered before it
// crosses a package's exported Compile/Execute boundary; see the callers in
// package subgraph and package kernel for the recover site that turns it
// into an *iface.Status. Nothing in this package should ever let a panic
// escape to a caller outside this module.
package except

// Catch calls handler if a panic of type E occurred. It must be called from
// a deferred statement. A panic of any other type is re-raised.
func Catch[E any](handler func(exception E)) {
	exception := recover()
	if exception == nil {
		return
	}
	exceptionE, ok := exception.(E)
	if !ok {
		panic(exception)
	}
	handler(exceptionE)
}

// Try runs fn and returns whatever value was passed to a panic during its
// execution, or nil if fn returned normally.
func Try(fn func()) (exception any) {
	defer func() {
		exception = recover()
	}()
	fn()
	return
}

// Throw is an alias for panic, for readability at call sites that model
// invariant violations as exceptions.
func Throw(exception any) {
	panic(exception)
}

// Assert throws msg if cond is false. Used for internal invariants that a
// correct pipeline should never violate (spec: "internal checks are
// assertions, not returned errors").
func Assert(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}
