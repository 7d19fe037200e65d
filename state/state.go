// Package state defines the elevator snapshot types shared by the HTTP
// client, the panel renderer, and the mock server. Snapshots arrive as
// untrusted JSON; Validate checks the server's structural invariants at
// the boundary so malformed payloads never reach the renderer.
package state

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction is the elevator's travel direction.
type Direction string

// Travel directions as they appear on the wire.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionIdle Direction = "idle"
)

// UnmarshalJSON parses a direction case-insensitively.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("direction: %w", err)
	}
	switch strings.ToLower(s) {
	case "up":
		*d = DirectionUp
	case "down":
		*d = DirectionDown
	case "idle":
		*d = DirectionIdle
	default:
		return fmt.Errorf("unknown direction %q", s)
	}
	return nil
}

// FloorState classifies a single floor in a snapshot.
type FloorState int

// Floor states. Exactly one floor in a valid snapshot is FloorCurrent.
const (
	FloorIdle FloorState = iota
	FloorQueued
	FloorMoving
	FloorCurrent
)

func (s FloorState) String() string {
	switch s {
	case FloorIdle:
		return "Idle"
	case FloorQueued:
		return "Queued"
	case FloorMoving:
		return "Moving"
	case FloorCurrent:
		return "Current"
	}
	return fmt.Sprintf("FloorState(%d)", int(s))
}

// Selectable reports whether a floor in this state accepts a new request.
// Only idle floors do; the current, moving, and queued floors are already
// served or scheduled.
func (s FloorState) Selectable() bool {
	return s == FloorIdle
}

// MarshalJSON emits the server's wire name. The server calls an idle
// floor "Available"; the parser below accepts both spellings.
func (s FloorState) MarshalJSON() ([]byte, error) {
	if s == FloorIdle {
		return json.Marshal("Available")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a floor state tag case-insensitively.
func (s *FloorState) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("floor state: %w", err)
	}
	switch strings.ToLower(tag) {
	case "available", "idle":
		*s = FloorIdle
	case "queued":
		*s = FloorQueued
	case "moving":
		*s = FloorMoving
	case "current":
		*s = FloorCurrent
	default:
		return fmt.Errorf("unknown floor state %q", tag)
	}
	return nil
}

// FloorInfo is one physical floor and its state.
type FloorInfo struct {
	Floor int        `json:"floor"`
	State FloorState `json:"state"`
}

// Snapshot is one complete elevator state as returned by the server.
type Snapshot struct {
	Direction    Direction   `json:"direction"`
	CurrentFloor int         `json:"currentFloor"`
	ActiveTarget *int        `json:"activeTarget"`
	Queue        []int       `json:"queue"`
	NumFloors    int         `json:"numFloors"`
	Floors       []FloorInfo `json:"floors"`
}

// Validate checks the invariants the server promises: at least one floor,
// floors listed ascending from 1 with one entry per floor, and exactly one
// floor tagged Current. Queue contents are deliberately not checked against
// the floor list; the renderer shows the queue verbatim.
func (s *Snapshot) Validate() error {
	if s.NumFloors < 1 {
		return fmt.Errorf("numFloors must be >= 1, got %d", s.NumFloors)
	}
	if len(s.Floors) != s.NumFloors {
		return fmt.Errorf("floors length %d does not match numFloors %d", len(s.Floors), s.NumFloors)
	}
	current := 0
	for i, f := range s.Floors {
		if f.Floor != i+1 {
			return fmt.Errorf("floors[%d] has floor number %d, want %d", i, f.Floor, i+1)
		}
		if f.State == FloorCurrent {
			current++
		}
	}
	if current != 1 {
		return fmt.Errorf("snapshot has %d floors tagged Current, want exactly 1", current)
	}
	return nil
}
