package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/errs"
	"github.com/and161185/notekeeper/internal/model"
	"github.com/and161185/notekeeper/internal/service"
	"github.com/and161185/notekeeper/internal/token"
)

// memUsers is an in-memory repository.UserRepository.
type memUsers struct {
	mu     sync.Mutex
	byName map[string]*model.User
	nextID int64
}

func (m *memUsers) Create(_ context.Context, username, hash string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byName == nil {
		m.byName = map[string]*model.User{}
	}
	if _, ok := m.byName[username]; ok {
		return nil, errs.ErrAlreadyExists
	}
	m.nextID++
	u := &model.User{ID: m.nextID, Username: username, PasswordHash: hash, CreatedAt: time.Now()}
	m.byName[username] = u
	c := *u
	return &c, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

// memNotes is an in-memory repository.NoteRepository with simplified search/sort.
type memNotes struct {
	mu     sync.Mutex
	notes  map[int64]*model.Note
	nextID int64
	clock  time.Time
}

func (m *memNotes) tick() time.Time {
	if m.clock.IsZero() {
		m.clock = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memNotes) List(_ context.Context, userID int64, f model.NoteFilter) ([]model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Note{}
	term := strings.ToLower(f.Search)
	for _, n := range m.notes {
		if n.UserID != userID {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(n.Title), term) && !strings.Contains(strings.ToLower(n.Content), term) {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch f.SortBy {
		case model.SortByTitle:
			less = strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		case model.SortByCreatedAt:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		default:
			less = out[i].UpdatedAt.Before(out[j].UpdatedAt)
		}
		if f.SortDir == model.SortDesc {
			return !less
		}
		return less
	})
	return out, nil
}

func (m *memNotes) Get(_ context.Context, userID, id int64) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return nil, errs.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (m *memNotes) Create(_ context.Context, userID int64, in model.NoteInput) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notes == nil {
		m.notes = map[int64]*model.Note{}
	}
	m.nextID++
	ts := m.tick()
	n := &model.Note{ID: m.nextID, Title: in.Title, Content: in.Content, UserID: userID, CreatedAt: ts, UpdatedAt: ts}
	m.notes[n.ID] = n
	c := *n
	return &c, nil
}

func (m *memNotes) Update(_ context.Context, userID, id int64, in model.NoteInput) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return nil, errs.ErrNotFound
	}
	n.Title, n.Content, n.UpdatedAt = in.Title, in.Content, m.tick()
	c := *n
	return &c, nil
}

func (m *memNotes) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return errs.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

// newTestServer wires real services over in-memory repositories.
func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	tm, err := token.New(token.Config{SigningKey: []byte("test-key"), Issuer: "notes-api", Audience: "notes-app"})
	require.NoError(t, err)
	log := zap.NewNop()
	auth := service.NewAuthService(&memUsers{}, tm, log)
	notes := service.NewNoteService(&memNotes{})
	srv := httptest.NewServer(New(auth, notes, log, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, bearer string, body any) *http.Response {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
