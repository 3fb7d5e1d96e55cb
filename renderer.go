package mvu

// Renderer receives derived props and performs output.
//
// Render is invoked once per rendering transition, sequentially, on the
// loop goroutine. Props are not retained by the runtime after the call;
// a renderer may keep copies for its own purposes.
type Renderer[P any] interface {
	Render(props P)
}

// RenderFunc adapts a plain function to the Renderer interface.
type RenderFunc[P any] func(props P)

func (f RenderFunc[P]) Render(props P) {
	f(props)
}
