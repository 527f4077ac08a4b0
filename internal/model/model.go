// Package model defines domain entities used by services and repositories.
package model

import "time"

// User represents an account stored on the server. The password is never stored in plaintext.
type User struct {
	ID           int64  // PK
	Username     string // unique
	PasswordHash string // base64(salt || HMAC-SHA512(salt, password))
	CreatedAt    time.Time
}

// Identity is the authenticated principal extracted from a verified session token.
type Identity struct {
	UserID   int64
	Username string
}

// Session is returned to the caller after a successful registration or login.
type Session struct {
	UserID    int64     `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Note is a single text note owned by exactly one user.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteInput carries the user-editable fields of a note.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Sort fields accepted by NoteFilter.
const (
	SortByTitle     = "title"
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
)

// Sort directions accepted by NoteFilter.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// NoteFilter narrows and orders a note listing.
type NoteFilter struct {
	Search  string // case-insensitive substring of title or content
	SortBy  string // title | createdAt | updatedAt
	SortDir string // asc | desc
}

// WithDefaults fills empty sort settings with updatedAt/desc.
func (f NoteFilter) WithDefaults() NoteFilter {
	if f.SortBy == "" {
		f.SortBy = SortByUpdatedAt
	}
	if f.SortDir == "" {
		f.SortDir = SortDesc
	}
	return f
}
