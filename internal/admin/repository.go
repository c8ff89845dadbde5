package admin

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

// Repository persists admin identities. Soft-deleted admins are invisible
// to every lookup.
type Repository interface {
	Create(ctx context.Context, a Admin) error
	FindByID(ctx context.Context, id string) (Admin, error)
	FindByEmail(ctx context.Context, email string) (Admin, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	HasRole(ctx context.Context, role string) (bool, error)
}

const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed admin repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new admin. The unique index on email surfaces a racing
// duplicate as Conflict.
func (r *PostgresRepository) Create(ctx context.Context, a Admin) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return fmt.Errorf("parse admin id: %w", err)
	}
	grants, err := json.Marshal(a.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}

	_, err = r.db.Exec(ctx, `INSERT INTO admins
		(id, full_name, email, password_hash, role, is_active, is_deleted, profile_picture, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, a.FullName, a.Email, a.PasswordHash, a.Role, a.IsActive, a.IsDeleted,
		a.ProfilePicture, grants, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Conflict("Admin with this email already exists")
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

const adminColumns = `id, full_name, email, password_hash, role, is_active, is_deleted,
	profile_picture, permissions, created_at, updated_at`

func (r *PostgresRepository) findOne(ctx context.Context, where string, arg any) (Admin, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE is_deleted = FALSE AND `+where, arg)
	a, err := scanAdmin(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Admin{}, apperr.NotFound("Admin not found")
	}
	if err != nil {
		return Admin{}, fmt.Errorf("query admin: %w", err)
	}
	return a, nil
}

// FindByID fetches an admin by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Admin, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Admin{}, apperr.NotFound("Admin not found")
	}
	return r.findOne(ctx, `id = $1`, parsed)
}

// FindByEmail fetches an admin by normalized email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Admin, error) {
	return r.findOne(ctx, `email = $1`, email)
}

// UpdatePassword persists a new password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return apperr.NotFound("Admin not found")
	}
	cmd, err := r.db.Exec(ctx,
		`UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3 AND is_deleted = FALSE`,
		hash, time.Now().UTC(), parsed)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("Admin not found")
	}
	return nil
}

// HasRole reports whether any live admin holds the role.
func (r *PostgresRepository) HasRole(ctx context.Context, role string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE role = $1 AND is_deleted = FALSE)`, role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin role: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row rowScanner) (Admin, error) {
	var (
		id        uuid.UUID
		grants    []byte
		createdAt time.Time
		updatedAt time.Time
		a         Admin
	)
	if err := row.Scan(&id, &a.FullName, &a.Email, &a.PasswordHash, &a.Role,
		&a.IsActive, &a.IsDeleted, &a.ProfilePicture, &grants, &createdAt, &updatedAt); err != nil {
		return Admin{}, err
	}
	if len(grants) > 0 {
		if err := json.Unmarshal(grants, &a.Permissions); err != nil {
			return Admin{}, fmt.Errorf("decode permissions: %w", err)
		}
	}
	a.ID = id.String()
	a.CreatedAt = createdAt.UTC()
	a.UpdatedAt = updatedAt.UTC()
	return a, nil
}
