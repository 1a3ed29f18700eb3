package http_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"notespace/internal/notes/domain/blocks"
	"notespace/internal/notes/domain/entities"
	"notespace/internal/notes/ports/repositories"
	userentities "notespace/internal/users/domain/entities"
	"notespace/internal/users/domain/services"
)

// memoryNotes - хранилище заметок в памяти с семантикой postgres адаптера.
// ownerExists заменяет внешний ключ notes.user_id.
type memoryNotes struct {
	mu          sync.Mutex
	clock       time.Time
	rows        map[string]*entities.Note
	ownerExists func(userID string) bool
}

func newMemoryNotes() *memoryNotes {
	return &memoryNotes{
		clock: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		rows:  make(map[string]*entities.Note),
	}
}

func (m *memoryNotes) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func copyNote(n *entities.Note) *entities.Note {
	c := *n
	return &c
}

func (m *memoryNotes) filter(keep func(*entities.Note) bool, less func(a, b *entities.Note) bool) []*entities.Note {
	out := make([]*entities.Note, 0)
	for _, n := range m.rows {
		if keep(n) {
			out = append(out, copyNote(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (m *memoryNotes) owned(noteID, userID string) (*entities.Note, bool) {
	n, ok := m.rows[noteID]
	if !ok || n.UserID != userID {
		return nil, false
	}
	return n, true
}

func (m *memoryNotes) Create(_ context.Context, note *entities.Note) (*entities.Note, error) {
	if m.ownerExists != nil && !m.ownerExists(note.UserID) {
		return nil, repositories.ErrOwnerNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := copyNote(note)
	n.ID = uuid.NewString()
	n.CreatedAt = m.tick()
	n.UpdatedAt = n.CreatedAt
	m.rows[n.ID] = n
	return copyNote(n), nil
}

func (m *memoryNotes) GetByID(_ context.Context, noteID, userID string) (*entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.owned(noteID, userID)
	if !ok {
		return nil, nil
	}
	return copyNote(n), nil
}

func byCreated(a, b *entities.Note) bool { return a.CreatedAt.Before(b.CreatedAt) }

func (m *memoryNotes) ListTopLevel(_ context.Context, userID string) ([]*entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(n *entities.Note) bool {
		return n.UserID == userID && n.ParentID == nil && !n.IsDeleted
	}, byCreated), nil
}

func (m *memoryNotes) ListChildren(_ context.Context, userID, parentID string) ([]*entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(n *entities.Note) bool {
		return n.UserID == userID && n.ParentID != nil && *n.ParentID == parentID && !n.IsDeleted
	}, byCreated), nil
}

func (m *memoryNotes) ListDeleted(_ context.Context, userID string) ([]*entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(n *entities.Note) bool {
		return n.UserID == userID && n.IsDeleted
	}, func(a, b *entities.Note) bool { return a.DeletedAt.After(*b.DeletedAt) }), nil
}

func (m *memoryNotes) ListFavorites(_ context.Context, userID string) ([]*entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(func(n *entities.Note) bool {
		return n.UserID == userID && n.IsFavorite && !n.IsDeleted
	}, func(a, b *entities.Note) bool { return a.UpdatedAt.After(b.UpdatedAt) }), nil
}

func (m *memoryNotes) Search(_ context.Context, userID string, q entities.SearchQuery) ([]*entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(q.Query)
	match := func(n *entities.Note) bool {
		if strings.Contains(strings.ToLower(n.Title), needle) {
			return true
		}
		return !q.TitleOnly && n.Description != nil &&
			strings.Contains(strings.ToLower(blocks.SearchText(*n.Description)), needle)
	}
	key := func(n *entities.Note) time.Time {
		if q.SortBy == entities.SortByCreatedAt {
			return n.CreatedAt
		}
		return n.UpdatedAt
	}

	return m.filter(func(n *entities.Note) bool {
		return n.UserID == userID && !n.IsDeleted && match(n)
	}, func(a, b *entities.Note) bool {
		if q.SortDirection == entities.SortAsc {
			return key(a).Before(key(b))
		}
		return key(a).After(key(b))
	}), nil
}

func (m *memoryNotes) mutate(noteID, userID string, apply func(*entities.Note) bool) (*entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.owned(noteID, userID)
	if !ok || !apply(n) {
		return nil, repositories.ErrNoteNotFoundOrNotOwned
	}
	n.UpdatedAt = m.tick()
	return copyNote(n), nil
}

func (m *memoryNotes) Update(_ context.Context, noteID, userID string, patch entities.NotePatch) (*entities.Note, error) {
	return m.mutate(noteID, userID, func(n *entities.Note) bool {
		if patch.Title != nil {
			n.Title = *patch.Title
		}
		if patch.Description != nil {
			d := *patch.Description
			n.Description = &d
		}
		return true
	})
}

func (m *memoryNotes) SetFavorite(_ context.Context, noteID, userID string, isFavorite bool) (*entities.Note, error) {
	return m.mutate(noteID, userID, func(n *entities.Note) bool {
		n.IsFavorite = isFavorite
		return true
	})
}

func (m *memoryNotes) SoftDelete(_ context.Context, noteID, userID string) (*entities.Note, error) {
	return m.mutate(noteID, userID, func(n *entities.Note) bool {
		now := m.clock.Add(time.Second)
		n.IsDeleted = true
		n.DeletedAt = &now
		return true
	})
}

func (m *memoryNotes) Restore(_ context.Context, noteID, userID string) (*entities.Note, error) {
	return m.mutate(noteID, userID, func(n *entities.Note) bool {
		if !n.IsDeleted {
			return false
		}
		n.IsDeleted = false
		n.DeletedAt = nil
		return true
	})
}

func (m *memoryNotes) DeletePermanently(_ context.Context, noteID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.owned(noteID, userID)
	if !ok || !n.IsDeleted {
		return repositories.ErrNoteNotFoundOrNotOwned
	}
	delete(m.rows, noteID)
	return nil
}

func (m *memoryNotes) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for id, n := range m.rows {
		if n.UserID == userID {
			delete(m.rows, id)
			count++
		}
	}
	return count, nil
}

func (m *memoryNotes) countFor(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, n := range m.rows {
		if n.UserID == userID {
			count++
		}
	}
	return count
}

// memoryUsers - хранилище пользователей в памяти.
type memoryUsers struct {
	mu   sync.Mutex
	rows map[string]*userentities.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{rows: make(map[string]*userentities.User)}
}

func copyUser(u *userentities.User) *userentities.User {
	c := *u
	return &c
}

func (m *memoryUsers) find(match func(*userentities.User) bool) (*userentities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.rows {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, userentities.ErrUserNotFound
}

func (m *memoryUsers) update(id string, apply func(*userentities.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.rows[id]
	if !ok {
		return userentities.ErrUserNotFound
	}
	apply(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (m *memoryUsers) Create(_ context.Context, user *userentities.User) (*userentities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.rows {
		if u.Email == user.Email {
			return nil, services.ErrEmailAlreadyExists
		}
	}
	u := copyUser(user)
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.rows[u.ID] = u
	return copyUser(u), nil
}

func (m *memoryUsers) exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.rows[id]
	return ok
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*userentities.User, error) {
	return m.find(func(u *userentities.User) bool { return u.ID == id })
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*userentities.User, error) {
	return m.find(func(u *userentities.User) bool { return u.Email == email })
}

func (m *memoryUsers) FindByResetToken(_ context.Context, tokenHash string) (*userentities.User, error) {
	return m.find(func(u *userentities.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == tokenHash
	})
}

func (m *memoryUsers) UpdateProfile(ctx context.Context, id string, patch userentities.ProfilePatch) (*userentities.User, error) {
	err := m.update(id, func(u *userentities.User) {
		if patch.DisplayName != nil {
			u.DisplayName = patch.DisplayName
		}
		if patch.AvatarURL != nil {
			u.AvatarURL = patch.AvatarURL
		}
	})
	if err != nil {
		return nil, err
	}
	return m.FindByID(ctx, id)
}

func (m *memoryUsers) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	return m.update(id, func(u *userentities.User) {
		u.ResetPasswordToken = &tokenHash
		u.ResetPasswordExpires = &expires
	})
}

func (m *memoryUsers) ClearResetToken(_ context.Context, id string) error {
	return m.update(id, func(u *userentities.User) {
		u.ResetPasswordToken = nil
		u.ResetPasswordExpires = nil
	})
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return m.update(id, func(u *userentities.User) {
		u.PasswordHash = passwordHash
		u.ResetPasswordToken = nil
		u.ResetPasswordExpires = nil
	})
}

func (m *memoryUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[id]; !ok {
		return userentities.ErrUserNotFound
	}
	delete(m.rows, id)
	return nil
}

// outbox запоминает отправленные ссылки сброса пароля.
type outbox struct {
	mu    sync.Mutex
	links map[string]string
}

func (o *outbox) SendPasswordReset(_ context.Context, to, resetLink string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links[to] = resetLink
	return nil
}

func (o *outbox) last(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.links[to]
}

type inlineTransactor struct{}

func (inlineTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
