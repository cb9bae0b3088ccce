package personalize

import (
	"context"
	"sync"
	"time"

	"github.com/omteam/fitagent/server/internal/agent/model"
)

// MemoryProfileStore keeps per-user personalization records in process
// memory. One coarse mutex guards every read and write; record bodies are
// small and operations short, so finer locking buys nothing. Records expire
// lazily: any access to a record older than the retention window treats it as
// absent and prunes it.
type MemoryProfileStore struct {
	mu      sync.Mutex
	records map[string]*model.ProfileRecord

	now func() time.Time
}

// NewMemoryProfileStore creates an empty store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		records: map[string]*model.ProfileRecord{},
		now:     time.Now,
	}
}

// Update implements model.ProfileRepository. An empty userID is a no-op.
func (s *MemoryProfileStore) Update(_ context.Context, userID string, payload model.ProfilePayload) error {
	if userID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(userID, now)

	rec, ok := s.records[userID]
	if !ok {
		rec = NewRecord(now)
		s.records[userID] = rec
	}

	ApplyUpdate(rec, payload, now)
	return nil
}

// Summarize implements model.ProfileRepository. Returns an empty string when
// the user is unknown or the record has expired.
func (s *MemoryProfileStore) Summarize(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(userID, s.now())

	rec, ok := s.records[userID]
	if !ok {
		return "", nil
	}
	return RenderSummary(rec), nil
}

func (s *MemoryProfileStore) pruneLocked(userID string, now time.Time) {
	if rec, ok := s.records[userID]; ok && Expired(rec, now) {
		delete(s.records, userID)
	}
}

var _ model.ProfileRepository = (*MemoryProfileStore)(nil)
