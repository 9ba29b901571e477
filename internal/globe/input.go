package globe

// InputKind identifies a host input event.
type InputKind int

const (
	InputPointerMove InputKind = iota
	InputPointerDown
	InputPointerUp
	InputPointerLeave
	InputScroll
)

func (k InputKind) String() string {
	switch k {
	case InputPointerMove:
		return "move"
	case InputPointerDown:
		return "down"
	case InputPointerUp:
		return "up"
	case InputPointerLeave:
		return "leave"
	case InputScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// InputEvent is a pointer or scroll event in host screen coordinates.
type InputEvent struct {
	Kind  InputKind
	X, Y  float64
	Delta float64 // scroll distance in world units, positive zooms out
}

// PointerMove reports the pointer at (x, y).
func PointerMove(x, y float64) InputEvent {
	return InputEvent{Kind: InputPointerMove, X: x, Y: y}
}

// PointerDown reports a primary button press at (x, y).
func PointerDown(x, y float64) InputEvent {
	return InputEvent{Kind: InputPointerDown, X: x, Y: y}
}

// PointerUp reports the primary button release.
func PointerUp(x, y float64) InputEvent {
	return InputEvent{Kind: InputPointerUp, X: x, Y: y}
}

// PointerLeave reports the pointer leaving the render surface.
func PointerLeave() InputEvent {
	return InputEvent{Kind: InputPointerLeave}
}

// Scroll reports a zoom by delta world units.
func Scroll(delta float64) InputEvent {
	return InputEvent{Kind: InputScroll, Delta: delta}
}

// EventKind identifies something the engine did during a frame.
type EventKind int

const (
	EventHoverEnter EventKind = iota
	EventHoverExit
	EventClick
	EventSelect  // a transition into Selected; OnSelect fired
	EventDismiss // the selection was closed
	EventRemoved // a hovered or selected marker disappeared
)

func (k EventKind) String() string {
	switch k {
	case EventHoverEnter:
		return "hover-enter"
	case EventHoverExit:
		return "hover-exit"
	case EventClick:
		return "click"
	case EventSelect:
		return "select"
	case EventDismiss:
		return "dismiss"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is an engine output.
type Event struct {
	Kind EventKind
	ID   string
}
