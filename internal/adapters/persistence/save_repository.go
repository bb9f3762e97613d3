package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// GormSaveRepository implements savegame.Repository using GORM
type GormSaveRepository struct {
	db *gorm.DB
}

// NewGormSaveRepository creates a new GORM save repository
func NewGormSaveRepository(db *gorm.DB) *GormSaveRepository {
	return &GormSaveRepository{db: db}
}

// Create persists the save row and its snapshot in one transaction
func (r *GormSaveRepository) Create(ctx context.Context, save *savegame.Save) error {
	model := saveToModel(save)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create save: %w", err)
		}
		snapshot := &SaveSnapshotModel{SaveID: save.ID, Data: save.Snapshot}
		if err := tx.Create(snapshot).Error; err != nil {
			return fmt.Errorf("failed to store snapshot: %w", err)
		}
		return nil
	})
}

// UpdateStatus changes the status of an existing save
func (r *GormSaveRepository) UpdateStatus(ctx context.Context, id string, status savegame.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid save status: %s", status)
	}
	result := r.db.WithContext(ctx).Model(&SaveModel{}).Where("id = ?", id).Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update save status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", savegame.ErrSaveNotFound, id)
	}
	return nil
}

// FindByID loads a save with its snapshot
func (r *GormSaveRepository) FindByID(ctx context.Context, id string) (*savegame.Save, error) {
	var model SaveModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", savegame.ErrSaveNotFound, id)
		}
		return nil, fmt.Errorf("failed to find save: %w", err)
	}

	var snapshot SaveSnapshotModel
	if err := r.db.WithContext(ctx).Where("save_id = ?", id).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("save %s has no snapshot", id)
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	save, err := modelToSave(&model)
	if err != nil {
		return nil, err
	}
	save.Snapshot = snapshot.Data
	return save, nil
}

// List returns every save newest first, without snapshot bytes
func (r *GormSaveRepository) List(ctx context.Context) ([]*savegame.Save, error) {
	var models []SaveModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	saves := make([]*savegame.Save, 0, len(models))
	for i := range models {
		s, err := modelToSave(&models[i])
		if err != nil {
			continue // Skip rows with unknown status
		}
		saves = append(saves, s)
	}
	return saves, nil
}

// Delete removes a save and its snapshot
func (r *GormSaveRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("save_id = ?", id).Delete(&SaveSnapshotModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&SaveModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete save: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", savegame.ErrSaveNotFound, id)
		}
		return nil
	})
}

func saveToModel(s *savegame.Save) *SaveModel {
	return &SaveModel{
		ID:             s.ID,
		Name:           s.Name,
		Status:         string(s.Status),
		ScenarioID:     s.ScenarioID,
		CreatedAt:      s.CreatedAt,
		Month:          int(s.Month),
		ProgressMonths: s.ProgressMonths,
		Fingerprint:    s.Fingerprint,
	}
}

func modelToSave(m *SaveModel) (*savegame.Save, error) {
	status, err := savegame.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &savegame.Save{
		ID:             m.ID,
		Name:           m.Name,
		Status:         status,
		ScenarioID:     m.ScenarioID,
		CreatedAt:      m.CreatedAt,
		Month:          shared.Month(m.Month),
		ProgressMonths: m.ProgressMonths,
		Fingerprint:    m.Fingerprint,
	}, nil
}

var _ savegame.Repository = (*GormSaveRepository)(nil)
