package repository

import (
	"context"

	"github.com/and161185/notekeeper/internal/model"
)

// NoteRepository provides user-scoped access to notes. Every method filters by userID.
type NoteRepository interface {
	// List returns the user's notes matching filter in the requested order.
	List(ctx context.Context, userID int64, filter model.NoteFilter) ([]model.Note, error)

	// Get returns a single note by ID.
	Get(ctx context.Context, userID, id int64) (*model.Note, error)

	// Create inserts a note and returns the stored row.
	Create(ctx context.Context, userID int64, in model.NoteInput) (*model.Note, error)

	// Update replaces title/content and bumps updated_at.
	Update(ctx context.Context, userID, id int64, in model.NoteInput) (*model.Note, error)

	// Delete removes a note.
	Delete(ctx context.Context, userID, id int64) error
}
