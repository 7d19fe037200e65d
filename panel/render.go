package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/c360studio/liftview/eventlog"
	"github.com/c360studio/liftview/state"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	floorIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	floorCurrentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ade80")).
				Bold(true)

	floorMovingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fde68a"))

	floorQueuedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#94a3b8"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd")).
			Bold(true)

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	waitingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))
)

// floorStyles maps each floor state to its visual style.
var floorStyles = map[state.FloorState]lipgloss.Style{
	state.FloorIdle:    floorIdleStyle,
	state.FloorCurrent: floorCurrentStyle,
	state.FloorMoving:  floorMovingStyle,
	state.FloorQueued:  floorQueuedStyle,
}

// floorTags maps each floor state to the text tag shown beside the
// button. Idle floors carry no tag.
var floorTags = map[state.FloorState]string{
	state.FloorIdle:    "",
	state.FloorCurrent: "● current",
	state.FloorMoving:  "◉ moving",
	state.FloorQueued:  "○ queued",
}

// floorLine is one rendered floor button: its number, state, and whether
// the user may request it.
type floorLine struct {
	floor      int
	st         state.FloorState
	selectable bool
}

// floorLines derives the button list from a snapshot, highest floor
// first to mimic a physical elevator panel.
func floorLines(snap *state.Snapshot) []floorLine {
	if snap == nil {
		return nil
	}
	lines := make([]floorLine, 0, len(snap.Floors))
	for i := len(snap.Floors) - 1; i >= 0; i-- {
		f := snap.Floors[i]
		lines = append(lines, floorLine{
			floor:      f.Floor,
			st:         f.State,
			selectable: f.State.Selectable(),
		})
	}
	return lines
}

// renderStatus renders the status fields: direction, current floor,
// active target, queue length, and floor count.
func renderStatus(snap *state.Snapshot) string {
	target := "—"
	if snap.ActiveTarget != nil {
		target = fmt.Sprintf("%d", *snap.ActiveTarget)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("direction ")+valueStyle.Render(string(snap.Direction)),
		labelStyle.Render("target    ")+valueStyle.Render(target),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("floor  ")+valueStyle.Render(fmt.Sprintf("%d of %d", snap.CurrentFloor, snap.NumFloors)),
		labelStyle.Render("queue  ")+valueStyle.Render(fmt.Sprintf("%d pending", len(snap.Queue))),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
}

// renderQueue renders one chip per queued floor, in dispatch order.
// Duplicate queue entries render as separate chips.
func renderQueue(snap *state.Snapshot) string {
	if len(snap.Queue) == 0 {
		return labelStyle.Render("queue empty")
	}
	chips := make([]string, len(snap.Queue))
	for i, floor := range snap.Queue {
		chips[i] = chipStyle.Render(fmt.Sprintf("[%d]", floor))
	}
	return strings.Join(chips, " ")
}

// renderFloors renders the button column. cursor is an index into the
// displayed (highest-first) order; -1 hides the cursor.
func renderFloors(snap *state.Snapshot, cursor int) string {
	lines := floorLines(snap)
	rendered := make([]string, len(lines))
	for i, line := range lines {
		marker := "  "
		if i == cursor {
			marker = cursorStyle.Render("▸ ")
		}
		button := fmt.Sprintf("[ %2d ]", line.floor)
		style := floorStyles[line.st]
		row := marker + style.Render(button)
		if tag := floorTags[line.st]; tag != "" {
			row += " " + style.Render(tag)
		}
		rendered[i] = row
	}
	return strings.Join(rendered, "\n")
}

// renderLog renders up to max event log entries, newest first, each
// prefixed with its local wall-clock time.
func renderLog(entries []eventlog.Entry, max int) string {
	if len(entries) == 0 {
		return labelStyle.Render("no events yet")
	}
	if max > 0 && len(entries) > max {
		entries = entries[:max]
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = logTimeStyle.Render(e.Timestamp.Format("15:04:05")) + " " + valueStyle.Render(e.Text)
	}
	return strings.Join(lines, "\n")
}
