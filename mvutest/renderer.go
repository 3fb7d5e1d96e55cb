package mvutest

import "sync"

// CaptureRenderer records every rendered props value in arrival order.
//
// Captured props remain available for assertions and for invoking the
// callbacks embedded in them, which typically feed the next
// ProcessEvents call. Safe for concurrent use, although the runtime
// renders sequentially.
type CaptureRenderer[P any] struct {
	mu      sync.Mutex
	renders []P
}

// NewCaptureRenderer creates an empty capturing renderer.
func NewCaptureRenderer[P any]() *CaptureRenderer[P] {
	return &CaptureRenderer[P]{}
}

// Render implements mvu.Renderer by appending to the capture list.
func (r *CaptureRenderer[P]) Render(props P) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, props)
}

// Count returns the number of renders captured so far.
func (r *CaptureRenderer[P]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.renders)
}

// At returns the i-th captured props value. Panics if out of range,
// matching slice semantics.
func (r *CaptureRenderer[P]) At(i int) P {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders[i]
}

// Last returns the most recent capture, or the zero value when nothing
// has rendered yet.
func (r *CaptureRenderer[P]) Last() P {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.renders) == 0 {
		var zero P
		return zero
	}
	return r.renders[len(r.renders)-1]
}

// Snapshot returns a copy of the capture list.
func (r *CaptureRenderer[P]) Snapshot() []P {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]P, len(r.renders))
	copy(out, r.renders)
	return out
}
