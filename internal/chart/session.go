// Package chart holds the interaction state behind a price chart: the
// hovered point, drag selections, and the derived view rendered from them.
package chart

import (
	"github.com/google/uuid"

	"GridironMarket/internal/model"
)

// State is the drag-selection state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// EventKind enumerates pointer events a host can dispatch.
type EventKind int

const (
	PointerMove EventKind = iota
	PointerDown
	PointerUp
	PointerLeave
	Clear
)

var eventNames = map[string]EventKind{
	"move":  PointerMove,
	"down":  PointerDown,
	"up":    PointerUp,
	"leave": PointerLeave,
	"clear": Clear,
}

// ParseEventKind maps "move", "down", "up", "leave" and "clear".
func ParseEventKind(s string) (EventKind, bool) {
	k, ok := eventNames[s]
	return k, ok
}

// Event is one pointer event in plot coordinates. Point is the rendered
// data point under the cursor, nil when the cursor is over empty plot area.
type Event struct {
	Kind  EventKind
	X, Y  float64
	Point *model.DataPoint
}

// Session is the interaction state of a single chart. It is owned by one
// pointer flow and is not safe for concurrent use.
type Session struct {
	ID string

	state  State
	active *model.DataPoint

	start model.DataPoint
	end   model.DataPoint
	moved bool

	selection *model.Selection
}

// NewSession returns an idle session with a fresh id.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// State returns the current drag state.
func (s *Session) State() State { return s.state }

// Dispatch applies one event.
func (s *Session) Dispatch(ev Event) {
	switch ev.Kind {
	case PointerMove:
		if ev.Point == nil {
			return
		}
		p := *ev.Point
		s.active = &p
		if s.state == Dragging {
			s.end = p
			if !model.SameTimestamp(s.start, s.end) {
				s.moved = true
			}
		}

	case PointerDown:
		if ev.Point == nil {
			return
		}
		p := *ev.Point
		s.active = &p
		s.state = Dragging
		s.start, s.end = p, p
		s.moved = false
		s.selection = nil

	case PointerUp:
		s.endDrag()

	case PointerLeave:
		s.active = nil
		s.endDrag()

	case Clear:
		s.state = Idle
		s.moved = false
		s.selection = nil
	}
}

func (s *Session) endDrag() {
	if s.state != Dragging {
		return
	}
	s.state = Idle
	if s.moved {
		s.selection = &model.Selection{Start: s.start, End: s.end}
	}
	s.moved = false
}

// Active returns the hovered point, if any.
func (s *Session) Active() (model.DataPoint, bool) {
	if s.active == nil {
		return model.DataPoint{}, false
	}
	return *s.active, true
}

// Display resolves the point shown in the header: the hovered point, else
// the latest point of series.
func (s *Session) Display(series []model.DataPoint) (model.DataPoint, bool) {
	if p, ok := s.Active(); ok {
		return p, true
	}
	if len(series) == 0 {
		return model.DataPoint{}, false
	}
	return series[len(series)-1], true
}

// Selection returns the live selection while a moved drag is in progress,
// else the retained one. The pair is in drag order, not normalized.
func (s *Session) Selection() (model.Selection, bool) {
	if s.state == Dragging {
		if !s.moved {
			return model.Selection{}, false
		}
		return model.Selection{Start: s.start, End: s.end}, true
	}
	if s.selection == nil {
		return model.Selection{}, false
	}
	return *s.selection, true
}

// Reset returns the session to idle with no hover or selection, as when the
// chart switches team.
func (s *Session) Reset() {
	s.state = Idle
	s.active = nil
	s.moved = false
	s.selection = nil
}
