package interact

// Event is a host input event in surface-local coordinates.
type Event interface {
	event()
}

// PointerDown starts a gesture.
type PointerDown struct{ X, Y float64 }

// PointerMove reports the current pointer position.
type PointerMove struct{ X, Y float64 }

// PointerUp ends a gesture.
type PointerUp struct{}

// PointerCancel ends a gesture when the host loses pointer capture or
// focus. It behaves exactly like PointerUp.
type PointerCancel struct{}

// Wheel is one wheel notch. A positive DeltaY scrolls down and shrinks the
// crop; a negative one grows it.
type Wheel struct{ DeltaY float64 }

func (PointerDown) event()   {}
func (PointerMove) event()   {}
func (PointerUp) event()     {}
func (PointerCancel) event() {}
func (Wheel) event()         {}
