// Package input defines window-system independent input events and the queue
// that carries them from the event pump to the viewer.
package input

import "sync"

// EventType identifies the kind of input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventKeyDown
	EventPointerDown
	EventPointerMove
	EventPointerUp
	EventWheel
)

// MousePointer is the pointer id used for the mouse. Touch points use ids
// starting at MousePointer+1.
const MousePointer = 0

// Key identifies keys the viewer binary reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyTab
	KeyF12
)

// Event represents a processed input event.
type Event struct {
	Type EventType

	// Pointer events. Primary is false for secondary buttons and for every
	// touch point except the first one down.
	PointerID int
	Primary   bool
	X, Y      float32

	// Wheel events, in pixels. Positive DeltaY scrolls toward the user.
	DeltaY float32

	// Resize events.
	Width, Height int

	Key Key
}

// Queue buffers events between the event pump and the frame loop.
// It is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		events: make([]Event, 0, 16),
	}
}

// Push appends an event.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

// Drain returns all queued events in arrival order and empties the queue.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = make([]Event, 0, cap(out))
	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
