// Package eventlog provides the bounded, newest-first event log shown in
// the panel. Only user-visible events are recorded: request outcomes and
// fetch failures. Successful polls are deliberately silent.
package eventlog

import "time"

// DefaultRetention is the number of entries kept when no explicit
// retention is configured.
const DefaultRetention = 80

// Entry is one timestamped log line.
type Entry struct {
	Timestamp time.Time
	Text      string
}

// Buffer is a bounded, insertion-ordered log. New entries go to the
// front; once the retention cap is reached the oldest entry is dropped.
// It is not safe for concurrent use: all appends happen on the panel's
// event loop.
type Buffer struct {
	retention int
	now       func() time.Time
	entries   []Entry
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		b.now = now
	}
}

// New creates a buffer retaining the given number of entries.
// Non-positive retention falls back to DefaultRetention.
func New(retention int, opts ...Option) *Buffer {
	if retention <= 0 {
		retention = DefaultRetention
	}
	b := &Buffer{
		retention: retention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Append inserts a new entry at the front and evicts beyond retention.
func (b *Buffer) Append(text string) {
	b.entries = append([]Entry{{Timestamp: b.now(), Text: text}}, b.entries...)
	if len(b.entries) > b.retention {
		b.entries = b.entries[:b.retention]
	}
}

// Entries returns a copy of the log, newest first.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// SetRetention changes the cap, truncating immediately if the buffer
// already holds more. Used when the config file is reloaded.
func (b *Buffer) SetRetention(retention int) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	b.retention = retention
	if len(b.entries) > b.retention {
		b.entries = b.entries[:b.retention]
	}
}
