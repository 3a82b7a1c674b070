// Package memory holds the append-only list of ingested text blocks.
package memory

import (
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/aiba/internal/syncx"
)

// Entry is one completed ingestion submission.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is an append-only, process-lifetime list of entries.
// Reads are safe from the event feed goroutine.
type Store struct {
	entries *syncx.RWGuard[[]Entry]
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries: syncx.NewGuard[[]Entry](nil),
		now:     time.Now,
	}
}

// Append records text as a new entry and returns the new entry count.
// Empty text is stored as an empty entry.
func (s *Store) Append(text string) (Entry, int) {
	e := Entry{ID: uuid.NewString(), Text: text, CreatedAt: s.now()}
	var n int
	s.entries.Write(func(list *[]Entry) {
		*list = append(*list, e)
		n = len(*list)
	})
	return e, n
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return syncx.View(s.entries, func(list []Entry) int { return len(list) })
}

// Latest returns the most recent entry, false when the store is empty.
// Entries are never mutated after Append, so the slice header copy is safe.
func (s *Store) Latest() (Entry, bool) {
	list := s.entries.Get()
	if len(list) == 0 {
		return Entry{}, false
	}
	return list[len(list)-1], true
}

// Entries returns a snapshot in submission order.
func (s *Store) Entries() []Entry {
	return syncx.View(s.entries, func(list []Entry) []Entry {
		out := make([]Entry, len(list))
		copy(out, list)
		return out
	})
}
