package evaluator

// Frame is a lexical scope of variable bindings. Frames form a chain to
// the static frame holding the builtin functions; lookups walk the chain
// outward.
//
// A frame is owned by the evaluation that created it and must not be
// shared between concurrent evaluations.
type Frame struct {
	bindings map[string]interface{}
	parent   *Frame
}

// NewFrame returns an empty frame enclosed by parent.
func NewFrame(parent *Frame) *Frame {
	return &Frame{parent: parent}
}

// Bind binds name in this frame, shadowing outer bindings.
func (f *Frame) Bind(name string, value interface{}) {
	if f.bindings == nil {
		f.bindings = make(map[string]interface{}, 4)
	}
	f.bindings[name] = value
}

// Lookup resolves name in this frame or the nearest enclosing frame that
// binds it.
func (f *Frame) Lookup(name string) (interface{}, bool) {
	for frame := f; frame != nil; frame = frame.parent {
		if v, ok := frame.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Parent returns the enclosing frame.
func (f *Frame) Parent() *Frame {
	return f.parent
}

func frameFromTuple(parent *Frame, t tuple) *Frame {
	frame := &Frame{parent: parent, bindings: make(map[string]interface{}, len(t))}
	for k, v := range t {
		frame.bindings[k] = v
	}
	return frame
}
