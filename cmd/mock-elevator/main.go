// Package main implements a mock elevator simulator for development and
// e2e testing of the panel. It serves the same two endpoints as the real
// simulator — GET /state and POST /request — with directional scan
// scheduling, in-path retargeting, and duplicate-press suppression, so
// the panel can be exercised without the production server.
//
// Usage:
//
//	mock-elevator -port 8000 -floors 10 -floor-time 2s
//
// The floor count can also come from ELEVATOR_NUM_FLOORS. A short
// -floor-time makes tests fast; the default matches the real simulator's
// two seconds per floor.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/c360studio/liftview/state"
)

// elevator is the simulated car. A worker goroutine moves it stepwise
// toward the active target; handlers only mutate the queue and read
// snapshots. The condition variable wakes the worker on new requests.
type elevator struct {
	numFloors int
	floorTime time.Duration

	mu   sync.Mutex
	cond *sync.Cond

	current   int
	active    int // 0 = no active target; floors are 1-based
	direction state.Direction
	queue     []int
	running   bool
}

func newElevator(numFloors int, floorTime time.Duration) (*elevator, error) {
	if numFloors < 2 {
		return nil, fmt.Errorf("number of floors must be at least 2, got %d", numFloors)
	}
	e := &elevator{
		numFloors: numFloors,
		floorTime: floorTime,
		current:   1,
		direction: state.DirectionIdle,
		running:   true,
	}
	e.cond = sync.NewCond(&e.mu)
	go e.run()
	return e, nil
}

func (e *elevator) run() {
	for {
		e.mu.Lock()
		for e.running && len(e.queue) == 0 {
			e.direction = state.DirectionIdle
			e.cond.Wait()
		}
		if !e.running {
			e.mu.Unlock()
			return
		}

		e.active, e.direction = e.pickNextTargetLocked()
		e.queue = removeFloor(e.queue, e.active)
		e.mu.Unlock()

		// Move stepwise to allow in-path retargeting.
		for e.step() {
		}

		e.mu.Lock()
		e.active = 0
		if len(e.queue) == 0 {
			e.direction = state.DirectionIdle
		}
		e.cond.Broadcast()
		e.mu.Unlock()
	}
}

// step sleeps one floor-travel period and advances the car one floor,
// switching to a nearer in-path target if one was queued meanwhile.
// It returns false once the target is reached or the elevator stops.
func (e *elevator) step() bool {
	e.mu.Lock()
	if !e.running || e.active == 0 || e.current == e.active {
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()

	time.Sleep(e.floorTime)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.active == 0 {
		return false
	}

	if retarget := e.retargetInPathLocked(); retarget != 0 && retarget != e.active {
		// Put the old target back if it's not already queued.
		if !containsFloor(e.queue, e.active) {
			e.queue = append(e.queue, e.active)
		}
		e.queue = removeFloor(e.queue, retarget)
		e.active = retarget
	}

	if e.active > e.current {
		e.current++
	} else if e.active < e.current {
		e.current--
	}
	return e.current != e.active
}

// retargetInPathLocked returns a queued floor strictly between the
// current position and the active target, in the direction of travel.
func (e *elevator) retargetInPathLocked() int {
	if e.active == 0 {
		return 0
	}
	switch e.direction {
	case state.DirectionUp:
		best := 0
		for _, f := range e.queue {
			if e.current < f && f < e.active && (best == 0 || f < best) {
				best = f
			}
		}
		return best
	case state.DirectionDown:
		best := 0
		for _, f := range e.queue {
			if e.active < f && f < e.current && (best == 0 || f > best) {
				best = f
			}
		}
		return best
	}
	return 0
}

// pickNextTargetLocked implements directional scan scheduling: keep
// sweeping in the current direction while requests remain there, then
// turn around. From idle, take the nearest request (lowest floor wins a
// tie).
func (e *elevator) pickNextTargetLocked() (int, state.Direction) {
	var ups, downs []int
	for _, f := range e.queue {
		if f > e.current {
			ups = append(ups, f)
		} else if f < e.current {
			downs = append(downs, f)
		}
	}

	if e.direction == state.DirectionUp {
		if len(ups) > 0 {
			return minOf(ups), state.DirectionUp
		}
		if len(e.queue) > 0 {
			return maxOf(e.queue), state.DirectionDown
		}
	}
	if e.direction == state.DirectionDown {
		if len(downs) > 0 {
			return maxOf(downs), state.DirectionDown
		}
		if len(e.queue) > 0 {
			return minOf(e.queue), state.DirectionUp
		}
	}

	target := e.queue[0]
	for _, f := range e.queue[1:] {
		df, dt := abs(f-e.current), abs(target-e.current)
		if df < dt || (df == dt && f < target) {
			target = f
		}
	}
	switch {
	case target > e.current:
		return target, state.DirectionUp
	case target < e.current:
		return target, state.DirectionDown
	}
	return target, state.DirectionIdle
}

// queueFloor validates and enqueues a request, waking the worker.
// Duplicate presses are suppressed with an explanatory message.
func (e *elevator) queueFloor(floor int) (string, error) {
	if floor < 1 || floor > e.numFloors {
		return "", fmt.Errorf("Floor must be between 1 and %d.", e.numFloors)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if floor == e.current || floor == e.active || containsFloor(e.queue, floor) {
		return fmt.Sprintf("Floor %d already requested or current; ignoring duplicate press.", floor), nil
	}

	e.queue = append(e.queue, floor)
	e.cond.Broadcast()
	return fmt.Sprintf("%d queued.", floor), nil
}

// snapshot builds the wire-format state under the lock.
func (e *elevator) snapshot() *state.Snapshot {
	e.mu.Lock()
	queue := make([]int, len(e.queue))
	copy(queue, e.queue)
	current := e.current
	active := e.active
	direction := e.direction
	e.mu.Unlock()

	floors := make([]state.FloorInfo, e.numFloors)
	for i := range floors {
		floor := i + 1
		st := state.FloorIdle
		switch {
		case floor == current:
			st = state.FloorCurrent
		case floor == active:
			st = state.FloorMoving
		case containsFloor(queue, floor):
			st = state.FloorQueued
		}
		floors[i] = state.FloorInfo{Floor: floor, State: st}
	}

	snap := &state.Snapshot{
		Direction:    direction,
		CurrentFloor: current,
		Queue:        queue,
		NumFloors:    e.numFloors,
		Floors:       floors,
	}
	if active != 0 {
		snap.ActiveTarget = &active
	}
	return snap
}

func (e *elevator) stop() {
	e.mu.Lock()
	e.running = false
	e.cond.Broadcast()
	e.mu.Unlock()
}

func removeFloor(queue []int, floor int) []int {
	for i, f := range queue {
		if f == floor {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}

func containsFloor(queue []int, floor int) bool {
	for _, f := range queue {
		if f == floor {
			return true
		}
	}
	return false
}

func minOf(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// --- HTTP handlers ---

func newHandler(e *elevator) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, e.snapshot())
	})

	mux.HandleFunc("/request", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var body struct {
			Floor *int `json:"floor"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Floor == nil {
			writeDetail(w, http.StatusBadRequest, "request body must be JSON with an integer floor field")
			return
		}

		message, err := e.queueFloor(*body.Floor)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"message": message,
			"state":   e.snapshot(),
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func main() {
	port := flag.Int("port", 8000, "port to listen on")
	floors := flag.Int("floors", 0, "number of floors (default: ELEVATOR_NUM_FLOORS or 10)")
	floorTime := flag.Duration("floor-time", 2*time.Second, "travel time per floor")
	flag.Parse()

	numFloors := *floors
	if numFloors == 0 {
		numFloors = 10
		if env := os.Getenv("ELEVATOR_NUM_FLOORS"); env != "" {
			n, err := strconv.Atoi(env)
			if err != nil {
				log.Fatalf("Invalid ELEVATOR_NUM_FLOORS %q: %v", env, err)
			}
			numFloors = n
		}
	}

	e, err := newElevator(numFloors, *floorTime)
	if err != nil {
		log.Fatalf("Failed to start elevator: %v", err)
	}
	defer e.stop()

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock-elevator listening on %s (%d floors, %s per floor)", addr, numFloors, *floorTime)
	if err := http.ListenAndServe(addr, newHandler(e)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
