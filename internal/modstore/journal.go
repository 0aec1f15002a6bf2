package modstore

import (
	"slices"
	"time"
)

// JournalEntry is one line of a sheet's edit history.
type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// journalLimit caps the entries kept per sheet. Older entries are dropped.
const journalLimit = 500

// Note appends an entry to the loaded sheet's journal and persists it.
// The journal is kept across Clear, so a save leaves a trace of what was
// written. Persist failures are logged only.
func (s *Store) Note(action, details string) {
	if !s.loaded {
		return
	}
	s.history = append(s.history, JournalEntry{Timestamp: s.now(), Action: action, Details: details})
	if n := len(s.history) - journalLimit; n > 0 {
		s.history = slices.Clone(s.history[n:])
	}
	if err := s.persist(kindJournal, s.history); err != nil {
		s.log.WithError(err).Warn("journal not persisted")
	}
}

// Journal returns the loaded sheet's history, oldest first.
func (s *Store) Journal() []JournalEntry {
	return slices.Clone(s.history)
}
