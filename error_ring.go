package latch

// sourceErrorRing keeps the most recent source errors of a field.
type sourceErrorRing struct {
	errors []*SourceError
	size   int
	head   int
	count  int
}

// newSourceErrorRing creates a ring with the given capacity.
// If size is 0, the ring is disabled.
func newSourceErrorRing(size int) *sourceErrorRing {
	if size <= 0 {
		return nil
	}
	return &sourceErrorRing{
		errors: make([]*SourceError, size),
		size:   size,
	}
}

// push records an error, evicting the oldest when full.
func (r *sourceErrorRing) push(err *SourceError) {
	if r == nil {
		return
	}
	r.errors[r.head] = err
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// clear forgets all recorded errors.
func (r *sourceErrorRing) clear() {
	if r == nil {
		return
	}
	for i := range r.errors {
		r.errors[i] = nil
	}
	r.head = 0
	r.count = 0
}

// all returns the recorded errors, oldest first.
func (r *sourceErrorRing) all() []*SourceError {
	if r == nil || r.count == 0 {
		return nil
	}
	result := make([]*SourceError, r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := 0; i < r.count; i++ {
		result[i] = r.errors[(start+i)%r.size]
	}
	return result
}
