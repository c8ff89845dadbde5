package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oncoverse/oncoverse/internal/apperr"
)

// ListParams filter and page the admin patient list.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Status *bool
}

// Repository persists patient identities.
type Repository interface {
	Create(ctx context.Context, p Patient) error
	FindByID(ctx context.Context, id string) (Patient, error)
	FindByEmail(ctx context.Context, email string) (Patient, error)
	FindByPhone(ctx context.Context, phone string) (Patient, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	UpdateProfile(ctx context.Context, p Patient) error
	List(ctx context.Context, params ListParams) ([]Patient, int, error)
}

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed patient repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new patient. The unique indexes on email and phone are
// the backstop behind the workflow's duplicate pre-checks; a violation
// surfaces as Conflict so a racing loser gets the same answer as a
// pre-checked duplicate.
func (r *PostgresRepository) Create(ctx context.Context, p Patient) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return fmt.Errorf("parse patient id: %w", err)
	}
	profile, err := json.Marshal(p.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	_, err = r.db.Exec(ctx, `INSERT INTO patients
		(id, full_name, email, phone, password_hash, is_verified, is_active, is_profile_completed, step_count, profile, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, p.FullName, p.Email, p.Phone, p.PasswordHash, p.IsVerified, p.IsActive,
		p.IsProfileCompleted, p.StepCount, profile, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Conflict("User already exists")
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

const patientColumns = `id, full_name, email, phone, password_hash, is_verified, is_active,
	is_profile_completed, step_count, profile, created_at, updated_at`

func (r *PostgresRepository) findOne(ctx context.Context, where string, arg any) (Patient, error) {
	row := r.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE `+where, arg)
	p, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Patient{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return Patient{}, fmt.Errorf("query patient: %w", err)
	}
	return p, nil
}

// FindByID fetches a patient by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Patient, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Patient{}, apperr.NotFound("User not found")
	}
	return r.findOne(ctx, `id = $1`, parsed)
}

// FindByEmail fetches a patient by normalized email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Patient, error) {
	return r.findOne(ctx, `email = $1`, email)
}

// FindByPhone fetches a patient by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (Patient, error) {
	return r.findOne(ctx, `phone = $1`, phone)
}

// UpdatePassword persists a new password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("User not found")
	}
	cmd, err := r.db.Exec(ctx, `UPDATE patients SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, time.Now().UTC(), parsed)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// UpdateProfile persists the mutated profile fields. Last write wins; there
// is no optimistic concurrency control.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, p Patient) error {
	parsed, err := uuid.Parse(p.ID)
	if err != nil {
		return apperr.NotFound("User not found")
	}
	profile, err := json.Marshal(p.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	cmd, err := r.db.Exec(ctx, `UPDATE patients
		SET full_name = $1, profile = $2, step_count = $3, is_profile_completed = $4, updated_at = $5
		WHERE id = $6`,
		p.FullName, profile, p.StepCount, p.IsProfileCompleted, time.Now().UTC(), parsed)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

// List pages through patients with optional search and active-status filter.
func (r *PostgresRepository) List(ctx context.Context, params ListParams) ([]Patient, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	where := `($1 = '' OR full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		OR phone ILIKE '%' || $1 || '%' OR profile->>'city' ILIKE '%' || $1 || '%'
		OR profile->>'country' ILIKE '%' || $1 || '%')
		AND ($2::boolean IS NULL OR is_active = $2)`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE `+where,
		params.Search, params.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+patientColumns+` FROM patients WHERE `+where+`
		ORDER BY created_at DESC OFFSET $3 LIMIT $4`,
		params.Search, params.Status, (params.Page-1)*params.Limit, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	return out, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (Patient, error) {
	var (
		id        uuid.UUID
		profile   []byte
		createdAt time.Time
		updatedAt time.Time
		p         Patient
	)
	if err := row.Scan(&id, &p.FullName, &p.Email, &p.Phone, &p.PasswordHash,
		&p.IsVerified, &p.IsActive, &p.IsProfileCompleted, &p.StepCount,
		&profile, &createdAt, &updatedAt); err != nil {
		return Patient{}, err
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &p.Profile); err != nil {
			return Patient{}, fmt.Errorf("decode profile: %w", err)
		}
	}
	p.ID = id.String()
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}
