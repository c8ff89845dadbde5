package admin

import (
	"context"
	"sync"
	"time"

	"github.com/oncoverse/oncoverse/internal/apperr"
)

type memoryRepository struct {
	mu     sync.RWMutex
	admins map[string]Admin // keyed by id
}

// NewMemoryRepository builds an in-memory admin store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{admins: make(map[string]Admin)}
}

func (r *memoryRepository) Create(_ context.Context, a Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.admins {
		if existing.Email == a.Email && !existing.IsDeleted {
			return apperr.Conflict("Admin with this email already exists")
		}
	}
	r.admins[a.ID] = a
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admins[id]
	if !ok || a.IsDeleted {
		return Admin{}, apperr.NotFound("Admin not found")
	}
	return a, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.admins {
		if a.Email == email && !a.IsDeleted {
			return a, nil
		}
	}
	return Admin{}, apperr.NotFound("Admin not found")
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok || a.IsDeleted {
		return apperr.NotFound("Admin not found")
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now().UTC()
	r.admins[id] = a
	return nil
}

func (r *memoryRepository) HasRole(_ context.Context, role string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.admins {
		if a.Role == role && !a.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}
