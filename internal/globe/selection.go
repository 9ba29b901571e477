package globe

import (
	"errors"
	"fmt"
)

// ErrStaleReference is returned when an event names an entity that is not
// the one currently held.
var ErrStaleReference = errors.New("stale entity reference")

// SelectionKind tags the active SelectionState variant.
type SelectionKind int

const (
	Idle SelectionKind = iota
	Hovering
	Selected
)

func (k SelectionKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Hovering:
		return "hovering"
	case Selected:
		return "selected"
	default:
		return "unknown"
	}
}

// SelectionState is what the overlay shows. ID is empty when Kind is Idle.
type SelectionState struct {
	Kind SelectionKind
	ID   string
}

func (s SelectionState) String() string {
	if s.Kind == Idle {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.ID)
}

// Selection tracks the hover slot and the selection slot independently.
// The selection outranks the hover when reporting State.
type Selection struct {
	hovered  string
	selected string
}

// State returns the active variant: Selected, else Hovering, else Idle.
func (s *Selection) State() SelectionState {
	switch {
	case s.selected != "":
		return SelectionState{Kind: Selected, ID: s.selected}
	case s.hovered != "":
		return SelectionState{Kind: Hovering, ID: s.hovered}
	default:
		return SelectionState{Kind: Idle}
	}
}

// Hovered returns the id under the pointer, if any.
func (s *Selection) Hovered() (string, bool) {
	return s.hovered, s.hovered != ""
}

// Selected returns the selected id, if any.
func (s *Selection) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// HoverEnter records the hovered entity.
func (s *Selection) HoverEnter(id string) {
	s.hovered = id
}

// HoverExit clears the hover slot if it holds id.
func (s *Selection) HoverExit(id string) error {
	if id == "" || s.hovered != id {
		return fmt.Errorf("%w: hover exit for %q while hovering %q", ErrStaleReference, id, s.hovered)
	}
	s.hovered = ""
	return nil
}

// Click selects id. It reports whether this is a new transition into
// Selected(id); clicking the already-selected id changes nothing.
func (s *Selection) Click(id string) bool {
	if id == "" || s.selected == id {
		return false
	}
	s.selected = id
	return true
}

// Dismiss clears the selection. A hover that is still active remains.
func (s *Selection) Dismiss() bool {
	if s.selected == "" {
		return false
	}
	s.selected = ""
	return true
}

// Remove forgets id in both slots. It reports whether the selection was cleared.
func (s *Selection) Remove(id string) bool {
	if id == "" {
		return false
	}
	if s.hovered == id {
		s.hovered = ""
	}
	if s.selected == id {
		s.selected = ""
		return true
	}
	return false
}
