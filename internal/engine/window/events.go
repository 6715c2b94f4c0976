package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/panoview/internal/engine/input"
)

// wheelStep converts one wheel notch to pixels, the unit pointer deltas use.
const wheelStep = 100

// PollEvents drains pending SDL events into q.
func (w *Window) PollEvents(q *input.Queue) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if e, ok := w.translate(event); ok {
			q.Push(e)
		}
	}
}

func (w *Window) translate(event sdl.Event) (input.Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return input.Event{Type: input.EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return input.Event{
				Type:   input.EventResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			}, true
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			return input.Event{Type: input.EventKeyDown, Key: translateKey(e.Keysym.Sym)}, true
		}

	case *sdl.MouseButtonEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return input.Event{}, false
		}
		t := input.EventPointerDown
		if e.Type == sdl.MOUSEBUTTONUP {
			t = input.EventPointerUp
		}
		return input.Event{
			Type:      t,
			PointerID: input.MousePointer,
			Primary:   e.Button == sdl.BUTTON_LEFT,
			X:         float32(e.X),
			Y:         float32(e.Y),
		}, true

	case *sdl.MouseMotionEvent:
		if e.Which == sdl.TOUCH_MOUSEID {
			return input.Event{}, false
		}
		return input.Event{
			Type:      input.EventPointerMove,
			PointerID: input.MousePointer,
			Primary:   true,
			X:         float32(e.X),
			Y:         float32(e.Y),
		}, true

	case *sdl.MouseWheelEvent:
		dy := float32(-e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		return input.Event{Type: input.EventWheel, DeltaY: dy * wheelStep}, true

	case *sdl.TouchFingerEvent:
		return w.translateTouch(e)
	}

	return input.Event{}, false
}

// translateTouch maps fingers to pointer ids above MousePointer. The first
// finger down is primary until it lifts.
func (w *Window) translateTouch(e *sdl.TouchFingerEvent) (input.Event, bool) {
	width, height := w.Size()
	out := input.Event{
		X: e.X * float32(width),
		Y: e.Y * float32(height),
	}

	switch e.Type {
	case sdl.FINGERDOWN:
		w.nextID++
		w.touches[e.FingerID] = input.MousePointer + w.nextID
		if w.primary < 0 {
			w.primary = e.FingerID
		}
		out.Type = input.EventPointerDown
	case sdl.FINGERMOTION:
		if _, ok := w.touches[e.FingerID]; !ok {
			return input.Event{}, false
		}
		out.Type = input.EventPointerMove
	case sdl.FINGERUP:
		if _, ok := w.touches[e.FingerID]; !ok {
			return input.Event{}, false
		}
		out.Type = input.EventPointerUp
	default:
		return input.Event{}, false
	}

	out.PointerID = w.touches[e.FingerID]
	out.Primary = e.FingerID == w.primary

	if e.Type == sdl.FINGERUP {
		delete(w.touches, e.FingerID)
		if e.FingerID == w.primary {
			w.primary = -1
		}
		if len(w.touches) == 0 {
			w.nextID = 0
		}
	}
	return out, true
}

func translateKey(sym sdl.Keycode) input.Key {
	switch sym {
	case sdl.K_ESCAPE:
		return input.KeyEscape
	case sdl.K_SPACE:
		return input.KeySpace
	case sdl.K_TAB:
		return input.KeyTab
	case sdl.K_F12:
		return input.KeyF12
	}
	return input.KeyUnknown
}
