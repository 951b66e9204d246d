package fiberflow

// Chain forwards dst's eventual result from src: when src resolves, dst
// resolves with the same value; when src rejects, dst rejects with a
// TaggedError wrapping src's cause under CodeDependencyFailed. It returns
// ErrCyclicChain without registering anything if src and dst are the same
// future: a future cannot be chained into itself.
func Chain[T any](src, dst *Future[T]) error {
	if src == dst {
		return ErrCyclicChain
	}
	src.AddListener(func(value T, err error) {
		if err != nil {
			dst.Reject(WrapTaggedError(DomainFuture, CodeDependencyFailed, "upstream future rejected", err))
			return
		}
		dst.Resolve(value)
	})
	return nil
}
