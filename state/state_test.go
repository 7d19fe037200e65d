package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverSnapshot = `{
	"numFloors": 5,
	"currentFloor": 3,
	"activeTarget": null,
	"direction": "idle",
	"queue": [],
	"floors": [
		{"floor": 1, "state": "Available"},
		{"floor": 2, "state": "Available"},
		{"floor": 3, "state": "Current"},
		{"floor": 4, "state": "Available"},
		{"floor": 5, "state": "Available"}
	]
}`

func TestSnapshot_DecodeServerPayload(t *testing.T) {
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(serverSnapshot), &snap))
	require.NoError(t, snap.Validate())

	assert.Equal(t, DirectionIdle, snap.Direction)
	assert.Equal(t, 3, snap.CurrentFloor)
	assert.Nil(t, snap.ActiveTarget)
	assert.Empty(t, snap.Queue)
	assert.Len(t, snap.Floors, 5)
	// The server's "Available" is our idle state.
	assert.Equal(t, FloorIdle, snap.Floors[0].State)
	assert.Equal(t, FloorCurrent, snap.Floors[2].State)
}

func TestSnapshot_DecodeActiveTarget(t *testing.T) {
	payload := `{
		"numFloors": 3,
		"currentFloor": 1,
		"activeTarget": 3,
		"direction": "UP",
		"queue": [2, 2],
		"floors": [
			{"floor": 1, "state": "current"},
			{"floor": 2, "state": "queued"},
			{"floor": 3, "state": "moving"}
		]
	}`

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(payload), &snap))
	require.NoError(t, snap.Validate())

	require.NotNil(t, snap.ActiveTarget)
	assert.Equal(t, 3, *snap.ActiveTarget)
	assert.Equal(t, DirectionUp, snap.Direction)
	// Duplicate queue entries survive decoding untouched.
	assert.Equal(t, []int{2, 2}, snap.Queue)
	assert.Equal(t, FloorQueued, snap.Floors[1].State)
	assert.Equal(t, FloorMoving, snap.Floors[2].State)
}

func TestFloorState_UnknownTag(t *testing.T) {
	var s FloorState
	err := json.Unmarshal([]byte(`"Broken"`), &s)
	assert.Error(t, err)
}

func TestDirection_UnknownTag(t *testing.T) {
	var d Direction
	err := json.Unmarshal([]byte(`"sideways"`), &d)
	assert.Error(t, err)
}

func TestFloorState_MarshalWireNames(t *testing.T) {
	data, err := json.Marshal([]FloorState{FloorIdle, FloorQueued, FloorMoving, FloorCurrent})
	require.NoError(t, err)
	assert.JSONEq(t, `["Available","Queued","Moving","Current"]`, string(data))
}

func TestFloorState_Selectable(t *testing.T) {
	assert.True(t, FloorIdle.Selectable())
	assert.False(t, FloorQueued.Selectable())
	assert.False(t, FloorMoving.Selectable())
	assert.False(t, FloorCurrent.Selectable())
}

func TestSnapshot_Validate(t *testing.T) {
	valid := func() *Snapshot {
		return &Snapshot{
			Direction:    DirectionIdle,
			CurrentFloor: 2,
			NumFloors:    3,
			Floors: []FloorInfo{
				{Floor: 1, State: FloorIdle},
				{Floor: 2, State: FloorCurrent},
				{Floor: 3, State: FloorIdle},
			},
		}
	}

	tests := []struct {
		name    string
		modify  func(*Snapshot)
		wantErr bool
	}{
		{
			name:    "valid snapshot",
			modify:  func(s *Snapshot) {},
			wantErr: false,
		},
		{
			name:    "zero floors",
			modify:  func(s *Snapshot) { s.NumFloors = 0; s.Floors = nil },
			wantErr: true,
		},
		{
			name:    "floor count mismatch",
			modify:  func(s *Snapshot) { s.NumFloors = 4 },
			wantErr: true,
		},
		{
			name:    "no current floor",
			modify:  func(s *Snapshot) { s.Floors[1].State = FloorIdle },
			wantErr: true,
		},
		{
			name:    "two current floors",
			modify:  func(s *Snapshot) { s.Floors[0].State = FloorCurrent },
			wantErr: true,
		},
		{
			name:    "floors out of order",
			modify: func(s *Snapshot) {
				s.Floors[0], s.Floors[2] = s.Floors[2], s.Floors[0]
			},
			wantErr: true,
		},
		{
			name: "queue member missing from floors is tolerated",
			modify: func(s *Snapshot) {
				s.Queue = []int{7, 7}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := valid()
			tt.modify(snap)
			err := snap.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
