package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
)

// MockSaveRepository is an in-memory savegame.Repository
type MockSaveRepository struct {
	mu    sync.RWMutex
	saves map[string]*savegame.Save

	// CreateErr, when set, is returned by every Create call
	CreateErr error
}

// NewMockSaveRepository creates an empty repository
func NewMockSaveRepository() *MockSaveRepository {
	return &MockSaveRepository{saves: make(map[string]*savegame.Save)}
}

// Create stores a copy of the save
func (m *MockSaveRepository) Create(ctx context.Context, save *savegame.Save) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.saves[save.ID]; exists {
		return fmt.Errorf("duplicate save id %s", save.ID)
	}
	cp := *save
	m.saves[save.ID] = &cp
	return nil
}

// UpdateStatus changes the status of a stored save
func (m *MockSaveRepository) UpdateStatus(ctx context.Context, id string, status savegame.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.saves[id]
	if !ok {
		return fmt.Errorf("%w: %s", savegame.ErrSaveNotFound, id)
	}
	s.Status = status
	return nil
}

// FindByID returns a copy of a stored save
func (m *MockSaveRepository) FindByID(ctx context.Context, id string) (*savegame.Save, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.saves[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", savegame.ErrSaveNotFound, id)
	}
	cp := *s
	return &cp, nil
}

// List returns every save newest first, without snapshots
func (m *MockSaveRepository) List(ctx context.Context) ([]*savegame.Save, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*savegame.Save, 0, len(m.saves))
	for _, s := range m.saves {
		cp := *s
		cp.Snapshot = nil
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a save
func (m *MockSaveRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.saves[id]; !ok {
		return fmt.Errorf("%w: %s", savegame.ErrSaveNotFound, id)
	}
	delete(m.saves, id)
	return nil
}

// Count returns the number of stored saves
func (m *MockSaveRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.saves)
}

var _ savegame.Repository = (*MockSaveRepository)(nil)
