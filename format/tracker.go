package format

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CopyFeedback is how long a segment stays marked as copied.
const CopyFeedback = 2 * time.Second

// Clipboard receives the raw content of copied segments.
type Clipboard interface {
	WriteText(text string) error
}

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules the copy-flag expiry. The zero Tracker uses the wall clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) TrackerOption {
	return func(t *Tracker) { t.clock = c }
}

// WithLogger sets the logger used for clipboard failures.
func WithLogger(l *zap.Logger) TrackerOption {
	return func(t *Tracker) { t.log = l }
}

// WithOnExpire registers a hook called (from the timer goroutine) after a
// copied flag resets, so the view can redraw.
func WithOnExpire(f func(id string)) TrackerOption {
	return func(t *Tracker) { t.onExpire = f }
}

// Tracker holds the per-segment UI state of one rendered message: the
// "recently copied" flag of each code segment and the expanded flag of each
// attached file. Unknown keys read as false.
//
// A copy bumps the segment's generation and schedules a reset that only
// applies if the generation is still current, so repeated copies extend the
// confirmation window instead of being cut short by an older timer.
type Tracker struct {
	clip     Clipboard
	clock    Clock
	log      *zap.Logger
	onExpire func(id string)

	mu       sync.Mutex
	copied   map[string]bool
	gen      map[string]uint64
	timers   map[string]Timer
	expanded map[int]bool
	closed   bool
}

// NewTracker returns a Tracker writing to clip.
func NewTracker(clip Clipboard, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		clip:     clip,
		clock:    wallClock{},
		log:      zap.NewNop(),
		copied:   make(map[string]bool),
		gen:      make(map[string]uint64),
		timers:   make(map[string]Timer),
		expanded: make(map[int]bool),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Copy writes text to the clipboard and marks id as copied for CopyFeedback.
// A clipboard failure is logged and leaves the flag untouched; it reports
// whether the write succeeded and never panics. A closed tracker writes
// nothing.
func (t *Tracker) Copy(id, text string) bool {
	if t.isClosed() {
		return false
	}
	if t.clip == nil {
		t.log.Warn("copy segment: no clipboard available", zap.String("segment", id))
		return false
	}
	if err := t.clip.WriteText(text); err != nil {
		t.log.Warn("copy segment failed", zap.String("segment", id), zap.Error(err))
		return false
	}
	t.MarkCopied(id)
	return true
}

// MarkCopied sets the copied flag of id after a clipboard write made
// elsewhere succeeded, and schedules its reset. It reports false once the
// tracker is closed.
func (t *Tracker) MarkCopied(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.gen[id]++
	g := t.gen[id]
	t.copied[id] = true
	if prev, ok := t.timers[id]; ok {
		prev.Stop()
	}
	t.timers[id] = t.clock.AfterFunc(CopyFeedback, func() { t.expire(id, g) })
	return true
}

func (t *Tracker) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Tracker) expire(id string, g uint64) {
	t.mu.Lock()
	if t.closed || t.gen[id] != g {
		t.mu.Unlock()
		return
	}
	t.copied[id] = false
	delete(t.timers, id)
	hook := t.onExpire
	t.mu.Unlock()

	if hook != nil {
		hook(id)
	}
}

// IsCopied reports whether id was copied within the last CopyFeedback.
func (t *Tracker) IsCopied(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.copied[id]
}

// ToggleExpanded flips the expanded flag of the file at index.
func (t *Tracker) ToggleExpanded(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expanded[index] = !t.expanded[index]
}

// IsExpanded reports whether the file at index is expanded.
func (t *Tracker) IsExpanded(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded[index]
}

// Close stops pending expiry timers and clears every copied flag. Expanded
// flags still answer reads; copies are refused from then on.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for id, tm := range t.timers {
		tm.Stop()
		delete(t.timers, id)
	}
	clear(t.copied)
}
