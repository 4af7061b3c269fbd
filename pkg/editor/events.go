package editor

import (
	"time"

	"github.com/pipewright/pipewright/pkg/graph"
)

// Mode is the active editing tool.
type Mode string

const (
	ModeSelect Mode = "SELECT"
	ModePipe   Mode = "PIPE"
)

// Device distinguishes precise pointers from coarse touch input. Touch
// gets a wider drag threshold since fingers jitter more before a motion
// becomes an intentional drag.
type Device string

const (
	DeviceMouse Device = "mouse"
	DeviceTouch Device = "touch"
)

// EventKind is the low-level gesture phase.
type EventKind string

const (
	EventPointerDown EventKind = "pointer_down"
	EventPointerMove EventKind = "pointer_move"
	EventPointerUp   EventKind = "pointer_up"
	// EventDeletePressed is the delete affordance on a selected node. It
	// bypasses tap counting entirely.
	EventDeletePressed EventKind = "delete_pressed"
)

// Event is a single low-level input event against the canvas. The shell
// that owns the rendering surface performs hit-testing and fills in the
// target fields; the reducer itself never touches a surface.
type Event struct {
	Kind   EventKind   `json:"kind"`
	Device Device      `json:"device"`
	Pos    graph.Point `json:"pos"`
	// TargetID is the node under the pointer when the gesture began (the
	// captured target, in touch-capture terms).
	TargetID string `json:"target_id,omitempty"`
	// UnderID is the node under the release point at pointer-up. On touch
	// devices the element receiving the end event can differ from the one
	// under the finger, so the shell re-resolves it and the reducer uses
	// it as the tap target once movement exceeded the threshold.
	UnderID string    `json:"under_id,omitempty"`
	Time    time.Time `json:"time"`
}

// Drag thresholds in logical canvas units.
const (
	MouseDragThreshold = 8.0
	TouchDragThreshold = 30.0
)

// DoubleTapWindow is the maximum gap between taps that still counts
// toward a double-tap.
const DoubleTapWindow = 500 * time.Millisecond

func dragThreshold(d Device) float64 {
	if d == DeviceTouch {
		return TouchDragThreshold
	}
	return MouseDragThreshold
}
