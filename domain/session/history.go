package session

import (
	"time"

	"video-translator/domain/speech"
)

// MaxHistory is the number of completed runs kept in history
const MaxHistory = 50

// HistoryEntry records one completed pipeline run
type HistoryEntry struct {
	ID         string
	SourceFile string
	Original   speech.Transcript
	Translated speech.Translation
	Timestamp  time.Time
}

// History is a bounded list of entries, most recent first.
// It is not safe for concurrent use; the owning session serializes access.
type History struct {
	entries []HistoryEntry
	limit   int
}

// NewHistory creates an empty history holding at most limit entries
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = MaxHistory
	}
	return &History{limit: limit}
}

// Prepend inserts e at index 0, evicting the oldest entries beyond the limit
func (h *History) Prepend(e HistoryEntry) {
	next := make([]HistoryEntry, 0, min(len(h.entries)+1, h.limit))
	next = append(next, e)
	for _, old := range h.entries {
		if len(next) == h.limit {
			break
		}
		next = append(next, old)
	}
	h.entries = next
}

// Entries returns a copy of the entries, most recent first
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries
func (h *History) Len() int {
	return len(h.entries)
}

// Latest returns the most recent entry
func (h *History) Latest() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[0], true
}
