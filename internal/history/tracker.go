package history

import (
	"sort"
	"strings"
	"sync"
)

// Tracker counts how often each item name has been requested. Counts only
// ever grow and live for the lifetime of the process.
type Tracker struct {
	mu     sync.Mutex
	counts map[string]int
	seq    map[string]int
	next   int
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{
		counts: make(map[string]int),
		seq:    make(map[string]int),
	}
}

// Record increments the counter for item, keyed case-insensitively.
func (t *Tracker) Record(item string) {
	key := strings.ToLower(item)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.counts[key]; !ok {
		t.seq[key] = t.next
		t.next++
	}
	t.counts[key]++
}

// TopN returns up to n item keys by descending count. Equal counts order
// the more recently first-seen item first, which keeps results
// deterministic across calls.
func (t *Tracker) TopN(n int) []string {
	t.mu.Lock()
	keys := make([]string, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if t.counts[keys[i]] != t.counts[keys[j]] {
			return t.counts[keys[i]] > t.counts[keys[j]]
		}
		return t.seq[keys[i]] > t.seq[keys[j]]
	})
	t.mu.Unlock()

	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
