package list

import (
	"strings"
	"sync"

	"github.com/pbaille/grocer/internal/domain"
)

const defaultCategory = "uncategorized"

// Recorder receives the raw item string of every successful add.
type Recorder interface {
	Record(item string)
}

// State is the shopping list. Entries keep insertion order, and item names
// are unique case-insensitively: adding an existing item sums quantities.
type State struct {
	mu       sync.Mutex
	entries  []domain.ListEntry
	recorder Recorder
}

// New creates an empty list that notifies rec on every add.
func New(rec Recorder) *State {
	return &State{recorder: rec}
}

// Add merges quantity into an existing entry or appends a new one. It never
// fails: a quantity below 1 becomes 1 and an empty category becomes
// "uncategorized". The first spelling of an item name is kept.
func (s *State) Add(item string, quantity int, category string) {
	if quantity < 1 {
		quantity = 1
	}
	if category == "" {
		category = defaultCategory
	}

	s.mu.Lock()
	key := strings.ToLower(item)
	merged := false
	for i := range s.entries {
		if strings.ToLower(s.entries[i].Item) == key {
			s.entries[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.entries = append(s.entries, domain.ListEntry{Item: item, Quantity: quantity, Category: category})
	}
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.Record(item)
	}
}

// Remove deletes every entry matching item case-insensitively. Removing an
// absent item is a no-op.
func (s *State) Remove(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(item)
	kept := s.entries[:0]
	for _, e := range s.entries {
		if strings.ToLower(e.Item) != key {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// Snapshot returns a copy of the current entries in insertion order.
func (s *State) Snapshot() []domain.ListEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ListEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Last returns the most recently appended entry, if any. Quantity merges do
// not change an entry's position.
func (s *State) Last() (domain.ListEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return domain.ListEntry{}, false
	}
	return s.entries[len(s.entries)-1], true
}
