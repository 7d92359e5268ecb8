// Package hook provides typed extension points that collaborators register
// callbacks on. Callbacks run in registration order.
//
// Register callbacks while wiring the application, before serving requests;
// the lists are not guarded for concurrent mutation.
package hook

// Filter passes a value through every registered callback, each receiving the
// previous callback's result.
type Filter[T any] struct {
	fns []func(T) T
}

// Add registers fn at the end of the chain.
func (f *Filter[T]) Add(fn func(T) T) {
	f.fns = append(f.fns, fn)
}

// Apply runs the chain starting from v. A nil Filter returns v unchanged.
func (f *Filter[T]) Apply(v T) T {
	if f == nil {
		return v
	}
	for _, fn := range f.fns {
		v = fn(v)
	}
	return v
}

// Action notifies every registered callback with the same value.
type Action[T any] struct {
	fns []func(T)
}

// Add registers fn.
func (a *Action[T]) Add(fn func(T)) {
	a.fns = append(a.fns, fn)
}

// Do invokes the callbacks in order.
func (a *Action[T]) Do(v T) {
	if a == nil {
		return
	}
	for _, fn := range a.fns {
		fn(v)
	}
}
