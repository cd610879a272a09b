package kensaku

import "github.com/rotisserie/eris"

var (
	// ErrCompile is returned when a term list is rejected while compiling a
	// filter. The wrapped message carries the offending term.
	ErrCompile = eris.New("filter compile failed")

	// ErrIndexOutOfRange is returned by term accessors given an index outside
	// [0, TermCount()).
	ErrIndexOutOfRange = eris.New("term index out of range")

	// ErrShapeMismatch is returned when a callback's parameter list does not
	// line up with the component list of a filter.
	ErrShapeMismatch = eris.New("callback shape does not match filter components")

	// ErrUseOfEmptyHandle is returned when iterating or inspecting a filter that
	// was moved from, released, or never compiled.
	ErrUseOfEmptyHandle = eris.New("use of empty filter handle")

	// ErrUnknownComponent is returned when a component ID that was never
	// registered in the world is passed to an operation that needs its layout.
	ErrUnknownComponent = eris.New("component is not registered")
)
