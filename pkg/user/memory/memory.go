// Package memory implements an in-memory user repository.
package memory

import (
	"context"
	"sync"
	"time"

	"deliveryflow/pkg/user"
)

// Repository provides an in-memory implementation of user.Repository.
type Repository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]user.User
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{nextID: 1, users: make(map[int64]user.User)}
}

// Create stores the user and assigns its id and timestamps.
func (r *Repository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = *u
	return nil
}

// GetByID retrieves a user by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := u
	return &cp, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

// Update applies the non-nil fields of up and returns the updated user.
func (r *Repository) Update(ctx context.Context, id int64, up user.Update) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Phone != nil {
		u.Phone = up.Phone
	}
	if up.BirthDate != nil {
		u.BirthDate = up.BirthDate
	}
	if up.Address != nil {
		u.Address = up.Address
	}
	if up.City != nil {
		u.City = up.City
	}
	if up.Country != nil {
		u.Country = up.Country
	}
	if up.PostalCode != nil {
		u.PostalCode = up.PostalCode
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	cp := u
	return &cp, nil
}
