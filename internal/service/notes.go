package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/repository"
)

// NoteService defines user-scoped note operations.
type NoteService interface {
	// List returns the user's notes filtered and sorted.
	List(ctx context.Context, userID int64, filter model.NoteFilter) ([]model.Note, error)
	// Get returns a single note.
	Get(ctx context.Context, userID, id int64) (*model.Note, error)
	// Create stores a new note.
	Create(ctx context.Context, userID int64, in model.NoteInput) (*model.Note, error)
	// Update replaces a note's title and content.
	Update(ctx context.Context, userID, id int64, in model.NoteInput) (*model.Note, error)
	// Delete removes a note.
	Delete(ctx context.Context, userID, id int64) error
}

type NoteServiceImpl struct {
	repo repository.NoteRepository
}

// NewNoteService constructs NoteService.
func NewNoteService(repo repository.NoteRepository) *NoteServiceImpl {
	return &NoteServiceImpl{repo: repo}
}

// List validates the filter and delegates to the repository.
// Validation rules:
// - SortBy is empty, title, createdAt or updatedAt
// - SortDir is empty, asc or desc
func (s *NoteServiceImpl) List(ctx context.Context, userID int64, filter model.NoteFilter) ([]model.Note, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	f := filter.WithDefaults()
	switch f.SortBy {
	case model.SortByTitle, model.SortByCreatedAt, model.SortByUpdatedAt:
	default:
		return nil, fmt.Errorf("%w: sortBy must be title, createdAt or updatedAt", errs.ErrValidation)
	}
	switch f.SortDir {
	case model.SortAsc, model.SortDesc:
	default:
		return nil, fmt.Errorf("%w: sortDir must be asc or desc", errs.ErrValidation)
	}
	return s.repo.List(ctx, userID, f)
}

// Get fetches a single note by id.
func (s *NoteServiceImpl) Get(ctx context.Context, userID, id int64) (*model.Note, error) {
	if userID <= 0 || id <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.repo.Get(ctx, userID, id)
}

// Create requires a non-blank title.
func (s *NoteServiceImpl) Create(ctx context.Context, userID int64, in model.NoteInput) (*model.Note, error) {
	if err := validateInput(userID, in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, userID, in)
}

// Update requires a non-blank title.
func (s *NoteServiceImpl) Update(ctx context.Context, userID, id int64, in model.NoteInput) (*model.Note, error) {
	if err := validateInput(userID, in); err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.repo.Update(ctx, userID, id, in)
}

// Delete removes a note owned by the user.
func (s *NoteServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	if userID <= 0 || id <= 0 {
		return errs.ErrNotFound
	}
	return s.repo.Delete(ctx, userID, id)
}

func validateInput(userID int64, in model.NoteInput) error {
	if userID <= 0 {
		return fmt.Errorf("%w: empty userID", errs.ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	return nil
}
