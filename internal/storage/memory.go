package storage

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"pwviz/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	deaths      map[string]model.DeathIndexRecord
	groupStats  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.deaths = make(map[string]model.DeathIndexRecord)
	s.groupStats = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SaveDeathIndex(_ context.Context, record model.DeathIndexRecord) error {
	if err := checkVersion(record.VersionedRecord); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	record.Deaths = maps.Clone(record.Deaths)
	s.deaths[record.RunDir] = record
	return nil
}

func (s *MemoryStore) GetDeathIndex(_ context.Context, runDir string) (model.DeathIndexRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return model.DeathIndexRecord{}, false, errNotInitialized
	}

	record, ok := s.deaths[runDir]
	record.Deaths = maps.Clone(record.Deaths)
	return record, ok, nil
}

// Group statistics are kept encoded so callers never share slices with the
// store.
func (s *MemoryStore) SaveGroupStats(_ context.Context, record model.GroupStatsRecord) error {
	if err := checkVersion(record.VersionedRecord); err != nil {
		return err
	}
	payload, err := EncodeGroupStats(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.groupStats[record.Key] = payload
	return nil
}

func (s *MemoryStore) GetGroupStats(_ context.Context, key string) (model.GroupStatsRecord, bool, error) {
	s.mu.RLock()
	payload, ok := s.groupStats[key]
	initialized := s.initialized
	s.mu.RUnlock()
	if !initialized {
		return model.GroupStatsRecord{}, false, errNotInitialized
	}
	if !ok {
		return model.GroupStatsRecord{}, false, nil
	}

	record, err := DecodeGroupStats(payload)
	if err != nil {
		return model.GroupStatsRecord{}, false, err
	}
	return record, true, nil
}

func (s *MemoryStore) ListGroupStats(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, errNotInitialized
	}
	return slices.Sorted(maps.Keys(s.groupStats)), nil
}

var errNotInitialized = errors.New("store is not initialized")
