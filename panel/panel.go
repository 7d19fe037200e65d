// Package panel implements the interactive elevator panel: a Bubble Tea
// model that polls the simulator on a fixed cadence, renders the floor
// buttons, queue chips, status fields, and event log, and submits floor
// requests for the user.
//
// All mutable session state (latest snapshot, sequence counters, event
// log) lives in the model; there is no package-level state, so multiple
// programs are independent and tests construct models directly.
package panel

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/c360studio/liftview/client"
	"github.com/c360studio/liftview/eventlog"
	"github.com/c360studio/liftview/state"
)

// DefaultPollInterval is the fixed poll cadence when none is configured.
const DefaultPollInterval = 500 * time.Millisecond

// logDisplayMax caps log lines drawn per frame; the buffer itself
// retains more for scrollback-free terminals.
const logDisplayMax = 12

// ── Messages ─────────────────────────────────────────────────────

type tickMsg time.Time

type pollResultMsg struct {
	seq  uint64
	snap *state.Snapshot
	err  error
}

type requestResultMsg struct {
	seq   uint64
	floor int
	res   *client.RequestResult
	err   error
}

// ReloadMsg applies a live config change. Zero fields are ignored.
type ReloadMsg struct {
	Interval  time.Duration
	Retention int
}

// ── Key bindings ─────────────────────────────────────────────────

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Request key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Request: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "request floor")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh now")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Request, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Request},
		{k.Refresh, k.Help, k.Quit},
	}
}

// ── Model ────────────────────────────────────────────────────────

// Model is the panel session. Construct with New and run under a
// tea.Program.
type Model struct {
	client    *client.Client
	log       *eventlog.Buffer
	serverURL string
	interval  time.Duration

	// Latest accepted snapshot; nil before the first successful poll.
	snap *state.Snapshot

	// dispatch numbers every outgoing poll/request; accepted records
	// the dispatch number of the snapshot currently on screen. A
	// result whose number is not newer is logged but its embedded
	// snapshot is discarded, so a slow response can never roll the
	// view back.
	dispatch *atomic.Uint64
	accepted uint64

	cursor int // index into the highest-first button list
	width  int
	height int

	help     help.Model
	showHelp bool
}

// New creates a panel session talking to the given client.
func New(c *client.Client, logBuf *eventlog.Buffer, serverURL string, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logBuf == nil {
		logBuf = eventlog.New(eventlog.DefaultRetention)
	}
	return Model{
		client:    c,
		log:       logBuf,
		serverURL: serverURL,
		interval:  interval,
		dispatch:  &atomic.Uint64{},
		help:      help.New(),
	}
}

// Snapshot returns the latest accepted snapshot, nil before the first
// successful poll.
func (m Model) Snapshot() *state.Snapshot {
	return m.snap
}

// Init fires an immediate poll and arms the repeating timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), tickCmd(m.interval))
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pollCmd dispatches one poll, stamped with the next sequence number.
func (m Model) pollCmd() tea.Cmd {
	seq := m.dispatch.Add(1)
	c := m.client
	return func() tea.Msg {
		snap, err := c.Poll(context.Background())
		return pollResultMsg{seq: seq, snap: snap, err: err}
	}
}

// requestCmd dispatches one floor request, stamped like a poll.
func (m Model) requestCmd(floor int) tea.Cmd {
	seq := m.dispatch.Add(1)
	c := m.client
	return func() tea.Msg {
		res, err := c.RequestFloor(context.Background(), floor)
		return requestResultMsg{seq: seq, floor: floor, res: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		// The timer runs for the life of the program; a failed poll
		// never changes the cadence.
		return m, tea.Batch(m.pollCmd(), tickCmd(m.interval))

	case pollResultMsg:
		if msg.err != nil {
			m.log.Append(fmt.Sprintf("poll failed: %v", msg.err))
			return m, nil
		}
		m.accept(msg.seq, msg.snap)

	case requestResultMsg:
		if msg.err != nil {
			m.log.Append(fmt.Sprintf("request for floor %d failed: %v", msg.floor, msg.err))
			return m, nil
		}
		text := msg.res.Message
		if text == "" {
			text = fmt.Sprintf("Requested floor %d", msg.floor)
		}
		m.log.Append(text)
		if msg.res.State != nil {
			m.accept(msg.seq, msg.res.State)
		}

	case ReloadMsg:
		if msg.Interval > 0 {
			m.interval = msg.Interval
		}
		if msg.Retention > 0 {
			m.log.SetRetention(msg.Retention)
		}
	}

	return m, nil
}

// accept installs a snapshot if it is newer than the one on screen.
func (m *Model) accept(seq uint64, snap *state.Snapshot) {
	if seq <= m.accepted {
		return
	}
	m.snap = snap
	m.accepted = seq
	m.clampCursor()
}

func (m *Model) clampCursor() {
	max := 0
	if m.snap != nil {
		max = len(m.snap.Floors) - 1
	}
	if m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Digit keys request that floor directly.
	if floor, ok := digitFloor(msg.String()); ok {
		return m, m.maybeRequest(floor)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.snap != nil && m.cursor < len(m.snap.Floors)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Request):
		lines := floorLines(m.snap)
		if m.cursor >= 0 && m.cursor < len(lines) {
			return m, m.maybeRequest(lines[m.cursor].floor)
		}

	case key.Matches(msg, keys.Refresh):
		return m, m.pollCmd()

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}

	return m, nil
}

// maybeRequest dispatches a request only for a floor the snapshot marks
// selectable. Disabled floors ignore activation entirely.
func (m Model) maybeRequest(floor int) tea.Cmd {
	if m.snap == nil {
		return nil
	}
	for _, f := range m.snap.Floors {
		if f.Floor == floor && f.State.Selectable() {
			return m.requestCmd(floor)
		}
	}
	return nil
}

// digitFloor maps keys "1".."9" to floors 1..9.
func digitFloor(s string) (int, bool) {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0'), true
	}
	return 0, false
}

func (m Model) View() string {
	header := headerStyle.Render("liftview") + "  " + labelStyle.Render(m.serverURL)

	var body string
	if m.snap == nil {
		body = waitingStyle.Render("waiting for first snapshot…")
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			renderStatus(m.snap),
			"",
			renderQueue(m.snap),
			"",
			renderFloors(m.snap, m.cursor),
		)
	}

	logView := renderLog(m.log.Entries(), logDisplayMax)
	footer := footerStyle.Render(m.help.View(keys))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		logView,
		"",
		footer,
	)
}
