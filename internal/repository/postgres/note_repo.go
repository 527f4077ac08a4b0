package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
)

const noteColumns = `id, title, content, user_id, created_at, updated_at`

// sortColumns whitelists ORDER BY expressions; user input never reaches the SQL text.
var sortColumns = map[string]string{
	model.SortByTitle:     "lower(title)",
	model.SortByCreatedAt: "created_at",
	model.SortByUpdatedAt: "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NoteRepo implements NoteRepository using PostgreSQL.
type NoteRepo struct{ db *DB }

// NewNoteRepo constructs a note repository.
func NewNoteRepo(db *DB) *NoteRepo { return &NoteRepo{db: db} }

// List returns the user's notes filtered by a case-insensitive substring and ordered as requested.
func (r *NoteRepo) List(ctx context.Context, userID int64, filter model.NoteFilter) ([]model.Note, error) {
	f := filter.WithDefaults()
	col, ok := sortColumns[f.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort field %q", errs.ErrValidation, f.SortBy)
	}
	dir := "DESC"
	if f.SortDir == model.SortAsc {
		dir = "ASC"
	}

	var q strings.Builder
	q.WriteString(`SELECT ` + noteColumns + ` FROM notes WHERE user_id=$1`)
	args := []any{userID}
	if f.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(f.Search)+"%")
		q.WriteString(` AND (title ILIKE $2 OR content ILIKE $2)`)
	}
	fmt.Fprintf(&q, ` ORDER BY %s %s, id %s`, col, dir, dir)

	rows, err := r.db.Pool.Query(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err = rows.Scan(&n.ID, &n.Title, &n.Content, &n.UserID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Get returns a single note owned by userID.
func (r *NoteRepo) Get(ctx context.Context, userID, id int64) (*model.Note, error) {
	const q = `SELECT ` + noteColumns + ` FROM notes WHERE id=$1 AND user_id=$2`
	return scanNote(r.db.Pool.QueryRow(ctx, q, id, userID))
}

// Create inserts a note owned by userID.
func (r *NoteRepo) Create(ctx context.Context, userID int64, in model.NoteInput) (*model.Note, error) {
	const q = `
INSERT INTO notes (title, content, user_id)
VALUES ($1, $2, $3)
RETURNING ` + noteColumns
	return scanNote(r.db.Pool.QueryRow(ctx, q, in.Title, in.Content, userID))
}

// Update replaces title and content of a note owned by userID.
func (r *NoteRepo) Update(ctx context.Context, userID, id int64, in model.NoteInput) (*model.Note, error) {
	const q = `
UPDATE notes
SET title=$3, content=$4, updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING ` + noteColumns
	return scanNote(r.db.Pool.QueryRow(ctx, q, id, userID, in.Title, in.Content))
}

// Delete removes a note owned by userID.
func (r *NoteRepo) Delete(ctx context.Context, userID, id int64) error {
	const q = `DELETE FROM notes WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (*model.Note, error) {
	var n model.Note
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.UserID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
