package savegame

import (
	"context"
	"errors"
)

// ErrSaveNotFound is returned when no save matches the requested id
var ErrSaveNotFound = errors.New("save not found")

// Repository defines save-game persistence operations
type Repository interface {
	// Create persists a new save including its snapshot
	Create(ctx context.Context, save *Save) error

	// UpdateStatus changes the status of an existing save
	UpdateStatus(ctx context.Context, id string, status Status) error

	// FindByID loads a save with its snapshot
	FindByID(ctx context.Context, id string) (*Save, error)

	// List returns every save newest first, without snapshot bytes
	List(ctx context.Context) ([]*Save, error)

	// Delete removes a save and its snapshot
	Delete(ctx context.Context, id string) error
}
