package store

import (
	"context"
	"sync"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/models"
)

// MemoryStore keeps users and challenges in process memory
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]models.User
	byEmail    map[string]string
	challenges map[string]models.Challenge
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]models.User),
		byEmail:    make(map[string]string),
		challenges: make(map[string]models.Challenge),
		now:        time.Now,
	}
}

func (m *MemoryStore) Users() Users                    { return memoryUsers{m} }
func (m *MemoryStore) Challenges() Challenges          { return memoryChallenges{m} }
func (m *MemoryStore) Close(ctx context.Context) error { return nil }

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	id, ok := r.m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.m.users[id]
	return &u, nil
}

func (r memoryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) Insert(ctx context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	now := r.m.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.m.users[u.ID] = *u
	r.m.byEmail[u.Email] = u.ID
	return nil
}

func (r memoryUsers) Save(ctx context.Context, id string, upd UserUpdate) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	upd.apply(&u, r.m.now())
	r.m.users[id] = u
	return nil
}

func (r memoryUsers) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if u, ok := r.m.users[id]; ok {
		delete(r.m.byEmail, u.Email)
		delete(r.m.users, id)
	}
	return nil
}

func (r memoryUsers) DeleteUnverifiedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var n int64
	for id, u := range r.m.users {
		if !u.IsVerified && u.CreatedAt.Before(before) {
			delete(r.m.users, id)
			delete(r.m.byEmail, u.Email)
			n++
		}
	}
	return n, nil
}

type memoryChallenges struct{ m *MemoryStore }

func (r memoryChallenges) Get(ctx context.Context, userID string) (*models.Challenge, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	c, ok := r.m.challenges[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r memoryChallenges) Put(ctx context.Context, c *models.Challenge) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.m.now()
	}
	r.m.challenges[c.UserID] = *c
	return nil
}

func (r memoryChallenges) Delete(ctx context.Context, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	delete(r.m.challenges, userID)
	return nil
}

func (r memoryChallenges) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var n int64
	for id, c := range r.m.challenges {
		if c.ExpiresAt.Before(before) {
			delete(r.m.challenges, id)
			n++
		}
	}
	return n, nil
}
