package pagestore

import (
	"time"

	"github.com/pagedeck/pagedeck/observability"
)

// MaxHistory is the default undo depth.
const MaxHistory = 20

// HistoryEntry is one undo/redo checkpoint. The entry owns its state's
// thumbnail references; they are released exactly once, when the entry
// is truncated, evicted, or cleared.
type HistoryEntry struct {
	state DocumentState
	label string
	at    time.Time
}

// Label returns the human-readable description recorded at push time.
func (e HistoryEntry) Label() string { return e.label }

// Time returns when the entry was recorded.
func (e HistoryEntry) Time() time.Time { return e.at }

// History is a bounded undo/redo stack of document snapshots with a
// position pointer. Pushing after undos truncates the abandoned redo
// branch; pushing at capacity evicts the oldest entry. Both paths
// release the dead entries' thumbnail references.
type History struct {
	entries []HistoryEntry
	pos     int // index of the current entry, -1 when empty
	max     int
	logger  observability.Logger
	now     func() time.Time
}

// NewHistory builds an empty history bounded to max entries (MaxHistory
// when max <= 0).
func NewHistory(max int, logger observability.Logger) *History {
	if max <= 0 {
		max = MaxHistory
	}
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &History{pos: -1, max: max, logger: logger, now: time.Now}
}

// Len returns the number of stored entries.
func (h *History) Len() int { return len(h.entries) }

// Pos returns the current position, -1 when empty.
func (h *History) Pos() int { return h.pos }

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool { return h.pos > 0 }

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool { return h.pos < len(h.entries)-1 }

// Push records state as the new current entry, taking ownership of its
// thumbnail references. Entries after the current position are dropped
// first; if the list then exceeds the bound, the oldest entry is
// evicted.
func (h *History) Push(state DocumentState, label string) {
	if h.pos < len(h.entries)-1 {
		dropped := h.entries[h.pos+1:]
		for i := range dropped {
			dropped[i].state.release()
		}
		h.entries = h.entries[:h.pos+1]
		h.logger.Debug("redo branch abandoned", observability.Int("entries", len(dropped)))
	}

	h.entries = append(h.entries, HistoryEntry{state: state, label: label, at: h.now()})
	if len(h.entries) > h.max {
		h.entries[0].state.release()
		// Shift rather than reslice so released entries do not pin the
		// backing array.
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
		h.pos = len(h.entries) - 1
		h.logger.Debug("history entry evicted", observability.String("label", label))
		return
	}
	h.pos++
}

// Undo steps the pointer back and returns an independent copy of that
// snapshot for live use. The second return is false when there is
// nothing to undo; the call is then a no-op.
func (h *History) Undo() (DocumentState, bool) {
	if !h.CanUndo() {
		return DocumentState{}, false
	}
	h.pos--
	return h.entries[h.pos].state.clone(), true
}

// Redo steps the pointer forward, symmetric to Undo.
func (h *History) Redo() (DocumentState, bool) {
	if !h.CanRedo() {
		return DocumentState{}, false
	}
	h.pos++
	return h.entries[h.pos].state.clone(), true
}

// Current returns the entry at the pointer.
func (h *History) Current() (HistoryEntry, bool) {
	if h.pos < 0 {
		return HistoryEntry{}, false
	}
	return h.entries[h.pos], true
}

// Clear releases every entry and empties the stack.
func (h *History) Clear() {
	for i := range h.entries {
		h.entries[i].state.release()
	}
	h.entries = nil
	h.pos = -1
}
