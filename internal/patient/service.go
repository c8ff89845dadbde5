package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oncoverse/oncoverse/internal/apperr"
)

// Service manages the profile side of a patient identity. The auth workflow
// owns creation; this service only reads and mutates existing identities.
type Service struct {
	repo Repository
}

// NewService creates a patient profile service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the sanitized profile for an authenticated patient.
func (s *Service) GetProfile(ctx context.Context, id string) (View, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return p.Sanitized(), nil
}

// ProfileUpdate is one step of the questionnaire: any subset of fields plus
// the step counter the client has reached.
type ProfileUpdate struct {
	FullName  *string
	StepCount *int
	Profile   Profile
}

// CompleteProfileResult reports the merged profile and what is still missing
// before the profile counts as completed.
type CompleteProfileResult struct {
	User                   View     `json:"user"`
	MissingMandatoryFields []string `json:"missingMandatoryFields"`
	IsProfileCompleted     bool     `json:"isProfileCompleted"`
	StepCount              int      `json:"stepCount"`
}

// CompleteProfile upserts the provided questionnaire fields onto the
// identity and flips the completion flag once nothing mandatory is missing.
func (s *Service) CompleteProfile(ctx context.Context, id string, update ProfileUpdate) (CompleteProfileResult, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return CompleteProfileResult{}, err
	}

	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		if name != "" {
			p.FullName = name
		}
	}
	if update.StepCount != nil {
		p.StepCount = *update.StepCount
	}
	p.Profile.Apply(update.Profile)

	missing := p.Profile.MissingMandatory()
	if len(missing) == 0 {
		p.IsProfileCompleted = true
	}

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return CompleteProfileResult{}, err
		}
		return CompleteProfileResult{}, apperr.Internal(fmt.Errorf("persist profile: %w", err))
	}

	return CompleteProfileResult{
		User:                   p.Sanitized(),
		MissingMandatoryFields: missing,
		IsProfileCompleted:     p.IsProfileCompleted,
		StepCount:              p.StepCount,
	}, nil
}

// Details returns the sanitized record for the admin patient-details view.
func (s *Service) Details(ctx context.Context, id string) (View, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return p.Sanitized(), nil
}

// Pagination describes one page of the admin patient list.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalItems      int  `json:"totalItems"`
	ItemsPerPage    int  `json:"itemsPerPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// ListResult is the admin patient-list payload.
type ListResult struct {
	Patients   []Summary  `json:"patients"`
	Pagination Pagination `json:"pagination"`
	Search     *string    `json:"search"`
}

// List pages through patients for the admin surface.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	patients, total, err := s.repo.List(ctx, params)
	if err != nil {
		return ListResult{}, apperr.Internal(fmt.Errorf("list patients: %w", err))
	}

	summaries := make([]Summary, 0, len(patients))
	for _, p := range patients {
		summaries = append(summaries, p.Summarize())
	}

	totalPages := total / params.Limit
	if total%params.Limit > 0 {
		totalPages++
	}

	result := ListResult{
		Patients: summaries,
		Pagination: Pagination{
			CurrentPage:     params.Page,
			TotalPages:      totalPages,
			TotalItems:      total,
			ItemsPerPage:    params.Limit,
			HasNextPage:     params.Page < totalPages,
			HasPreviousPage: params.Page > 1,
		},
	}
	if params.Search != "" {
		result.Search = &params.Search
	}
	return result, nil
}
