package patient

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oncoverse/oncoverse/internal/apperr"
)

type memoryRepository struct {
	mu       sync.RWMutex
	patients map[string]Patient // keyed by id
}

// NewMemoryRepository builds an in-memory patient store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{patients: make(map[string]Patient)}
}

func (r *memoryRepository) Create(_ context.Context, p Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.patients {
		if existing.Email == p.Email || existing.Phone == p.Phone {
			return apperr.Conflict("User already exists")
		}
	}
	r.patients[p.ID] = p
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return Patient{}, apperr.NotFound("User not found")
	}
	return p, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return Patient{}, apperr.NotFound("User not found")
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.Phone == phone {
			return p, nil
		}
	}
	return Patient{}, apperr.NotFound("User not found")
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return apperr.NotFound("User not found")
	}
	p.PasswordHash = hash
	p.UpdatedAt = time.Now().UTC()
	r.patients[id] = p
	return nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, updated Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[updated.ID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	p.FullName = updated.FullName
	p.Profile = updated.Profile
	p.StepCount = updated.StepCount
	p.IsProfileCompleted = updated.IsProfileCompleted
	p.UpdatedAt = time.Now().UTC()
	r.patients[updated.ID] = p
	return nil
}

func (r *memoryRepository) List(_ context.Context, params ListParams) ([]Patient, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Patient
	for _, p := range r.patients {
		if params.Status != nil && p.IsActive != *params.Status {
			continue
		}
		if params.Search != "" && !matchesSearch(p, params.Search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (params.Page - 1) * params.Limit
	if start >= total {
		return nil, total, nil
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matchesSearch(p Patient, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	haystacks := []string{p.FullName, p.Email, p.Phone}
	if p.Profile.City != nil {
		haystacks = append(haystacks, *p.Profile.City)
	}
	if p.Profile.Country != nil {
		haystacks = append(haystacks, *p.Profile.Country)
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
