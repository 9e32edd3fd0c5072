package store

import (
	"time"

	"github.com/thatguy-hiparh/jobscout/internal/model"
)

// Ensure NopStore implements model.SeenStore.
var _ model.SeenStore = (*NopStore)(nil)

// NopStore is a no-op store used by check mode. It never records anything,
// so every posting appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Contains(key string) (bool, error)            { return false, nil }
func (s *NopStore) Upsert(key string, firstSeen time.Time) error { return nil }
func (s *NopStore) Prune(olderThan time.Duration) error          { return nil }
func (s *NopStore) IsEmpty() (bool, error)                       { return true, nil }
