package editor

import "math"

// Step advances the interaction machine by one input event and returns the
// next state plus any intents the event resolved to. It is a pure
// function over (state, event).
func Step(st State, ev Event) (State, []Intent) {
	switch ev.Kind {
	case EventPointerDown:
		return stepDown(st, ev)
	case EventPointerMove:
		return stepMove(st, ev)
	case EventPointerUp:
		return stepUp(st, ev)
	case EventDeletePressed:
		return stepDelete(st, ev)
	}
	return st, nil
}

// SetMode switches the active tool. Leaving PIPE mode unconditionally
// drops any locked source.
func SetMode(st State, m Mode) State {
	st.Mode = m
	if m != ModePipe {
		st.PipeSourceID = ""
	}
	st.DraggingID = ""
	st.Moved = false
	return st
}

func stepDown(st State, ev Event) (State, []Intent) {
	st.Pointer = ev.Pos
	st.DragStart = ev.Pos
	st.Moved = false
	st.DraggingID = ev.TargetID
	return st, nil
}

func stepMove(st State, ev Event) (State, []Intent) {
	st.Pointer = ev.Pos

	if st.DraggingID == "" {
		return st, nil
	}

	if !st.Moved {
		dx := ev.Pos.X - st.DragStart.X
		dy := ev.Pos.Y - st.DragStart.Y
		if math.Hypot(dx, dy) > dragThreshold(ev.Device) {
			st.Moved = true
		}
	}

	// Live position updates only happen in SELECT mode; PIPE mode tracks
	// movement solely to tell taps from slips.
	if st.Moved && st.Mode == ModeSelect {
		return st, []Intent{{Kind: IntentMoveNode, NodeID: st.DraggingID, Pos: ev.Pos}}
	}
	return st, nil
}

func stepUp(st State, ev Event) (State, []Intent) {
	st.Pointer = ev.Pos

	// Touch capture keeps delivering events to the element the gesture
	// started on, so once the finger has moved the captured target is
	// stale: take the node actually under the release point instead.
	target := ev.TargetID
	if ev.Device == DeviceTouch && st.Moved {
		target = ev.UnderID
	}

	moved := st.Moved
	st.DraggingID = ""
	st.Moved = false

	if st.Mode == ModePipe {
		return stepUpPipe(st, ev, target, moved)
	}
	return stepUpSelect(st, ev, target, moved)
}

func stepUpSelect(st State, ev Event, target string, moved bool) (State, []Intent) {
	// A completed drag is not a tap; the move intents already went out.
	if moved && target != "" {
		return st, nil
	}

	if target == "" {
		// Background release clears the selection and any pipe lock.
		st.SelectedID = ""
		st.PipeSourceID = ""
		st.TapCount = 0
		st.LastTappedID = ""
		return st, []Intent{{Kind: IntentClearSelection}}
	}

	if target == st.LastTappedID && ev.Time.Sub(st.LastTapTime) <= DoubleTapWindow {
		st.TapCount++
	} else {
		st.TapCount = 1
	}
	st.LastTappedID = target
	st.LastTapTime = ev.Time

	if st.TapCount >= 2 {
		st.TapCount = 0
		return st, []Intent{{Kind: IntentRequestEdit, NodeID: target}}
	}

	st.SelectedID = target
	return st, []Intent{{Kind: IntentSelect, NodeID: target}}
}

func stepUpPipe(st State, ev Event, target string, moved bool) (State, []Intent) {
	if target == "" {
		// Background taps drop the lock without mutating anything.
		st.PipeSourceID = ""
		if st.SelectedID != "" {
			st.SelectedID = ""
			return st, []Intent{{Kind: IntentClearSelection}}
		}
		return st, nil
	}

	if st.PipeSourceID == "" {
		st.PipeSourceID = target
		st.SelectedID = ""
		return st, []Intent{{Kind: IntentClearSelection}}
	}

	if target == st.PipeSourceID {
		// Tapping the locked source again cancels the gesture, but only
		// when the pointer stayed put; a slip across the source node is
		// not a deliberate cancel.
		if !moved {
			st.PipeSourceID = ""
		}
		return st, nil
	}

	from := st.PipeSourceID
	st.PipeSourceID = ""
	return st, []Intent{{Kind: IntentAddEdge, From: from, To: target, Pos: ev.Pos}}
}

func stepDelete(st State, ev Event) (State, []Intent) {
	id := ev.TargetID
	if id == "" {
		id = st.SelectedID
	}
	if id == "" {
		return st, nil
	}
	if st.SelectedID == id {
		st.SelectedID = ""
	}
	if st.PipeSourceID == id {
		st.PipeSourceID = ""
	}
	return st, []Intent{{Kind: IntentDeleteNode, NodeID: id}}
}
