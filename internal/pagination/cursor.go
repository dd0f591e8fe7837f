// Package pagination merges independently-paginated pull request sources
// into single logical pages and tracks per-source fetch progress.
package pagination

import "sync"

// HasMore is the tri-state "are there pages beyond the cursor" flag.
type HasMore int

const (
	// HasMoreUnknown means the source has not been queried yet
	HasMoreUnknown HasMore = iota

	// HasMoreYes means the source reported more pages after the cursor
	HasMoreYes

	// HasMoreNo means the source is exhausted
	HasMoreNo
)

// boolToHasMore converts a source's has-more report.
func boolToHasMore(b bool) HasMore {
	if b {
		return HasMoreYes
	}
	return HasMoreNo
}

// CursorKey identifies one (source, logical query) pagination stream. Using
// a struct key gives explicit equality and avoids the collisions of
// concatenated string keys.
type CursorKey struct {
	// SourceID identifies the source repository
	SourceID string

	// QueryID identifies the logical listing query
	QueryID string
}

// Cursor is the pagination progress record for one stream. Page only ever
// increases; exhaustion is recorded in HasMore, never by decrementing.
type Cursor struct {
	// Key identifies the stream
	Key CursorKey

	// Page is the highest page number fetched so far (0 = untouched)
	Page int

	// HasMore reports whether pages beyond Page exist
	HasMore HasMore
}

// CursorStore holds cursors and per-query fetch progress in memory. It is
// safe for concurrent use; serialization of whole fetch operations is the
// coordinator's job, not the store's.
type CursorStore struct {
	mu       sync.RWMutex
	cursors  map[CursorKey]Cursor
	progress map[string]int
}

// NewCursorStore creates an empty cursor store.
func NewCursorStore() *CursorStore {
	return &CursorStore{
		cursors:  make(map[CursorKey]Cursor),
		progress: make(map[string]int),
	}
}

// Get returns the cursor for a stream, creating it at page 0 on first access.
func (s *CursorStore) Get(sourceID, queryID string) Cursor {
	key := CursorKey{SourceID: sourceID, QueryID: queryID}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.cursors[key]
	if !ok {
		cur = Cursor{Key: key}
		s.cursors[key] = cur
	}

	return cur
}

// Update stores a cursor. The page number is monotonic: an update with a
// lower page keeps the stored page and only applies the HasMore change.
func (s *CursorStore) Update(cur Cursor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.cursors[cur.Key]; ok && existing.Page > cur.Page {
		cur.Page = existing.Page
	}

	s.cursors[cur.Key] = cur
}

// Progress returns the recorded total pages fetched for a query and whether
// a baseline has been recorded at all.
func (s *CursorStore) Progress(queryID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, ok := s.progress[queryID]
	return total, ok
}

// AddProgress increments the total pages fetched for a query.
func (s *CursorStore) AddProgress(queryID string, pages int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress[queryID] += pages
}

// SetProgressIfUnset records a baseline for a query only when none exists.
// Returns true when the baseline was recorded.
func (s *CursorStore) SetProgressIfUnset(queryID string, pages int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.progress[queryID]; ok {
		return false
	}

	s.progress[queryID] = pages
	return true
}

// Snapshot returns a copy of all cursors and progress counters, suitable
// for persistence.
func (s *CursorStore) Snapshot() ([]Cursor, map[string]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cursors := make([]Cursor, 0, len(s.cursors))
	for _, cur := range s.cursors {
		cursors = append(cursors, cur)
	}

	progress := make(map[string]int, len(s.progress))
	for queryID, total := range s.progress {
		progress[queryID] = total
	}

	return cursors, progress
}

// Hydrate replaces the store contents with previously persisted state.
func (s *CursorStore) Hydrate(cursors []Cursor, progress map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors = make(map[CursorKey]Cursor, len(cursors))
	for _, cur := range cursors {
		s.cursors[cur.Key] = cur
	}

	s.progress = make(map[string]int, len(progress))
	for queryID, total := range progress {
		s.progress[queryID] = total
	}
}
