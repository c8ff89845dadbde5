package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oncoverse/oncoverse/internal/apperr"
)

// PostgresStore keeps file content in the files table as bytea.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed file store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save inserts the file and its metadata.
func (s *PostgresStore) Save(ctx context.Context, meta Metadata, content []byte) error {
	id, err := uuid.Parse(meta.ID)
	if err != nil {
		return fmt.Errorf("parse file id: %w", err)
	}
	var uploadedBy *uuid.UUID
	if meta.UploadedBy != "" {
		parsed, err := uuid.Parse(meta.UploadedBy)
		if err != nil {
			return fmt.Errorf("parse uploader id: %w", err)
		}
		uploadedBy = &parsed
	}

	_, err = s.db.Exec(ctx, `INSERT INTO files
		(id, file_name, content_type, size_bytes, uploaded_by, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, meta.FileName, meta.ContentType, meta.Size, uploadedBy, content, meta.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// Open fetches a stored file by id.
func (s *PostgresStore) Open(ctx context.Context, id string) (Metadata, []byte, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Metadata{}, nil, apperr.NotFound("File not found")
	}

	var (
		meta       Metadata
		fileID     uuid.UUID
		uploadedBy *uuid.UUID
		content    []byte
		createdAt  time.Time
	)
	err = s.db.QueryRow(ctx, `SELECT id, file_name, content_type, size_bytes, uploaded_by, content, created_at
		FROM files WHERE id = $1`, parsed).
		Scan(&fileID, &meta.FileName, &meta.ContentType, &meta.Size, &uploadedBy, &content, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Metadata{}, nil, apperr.NotFound("File not found")
	}
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("query file: %w", err)
	}

	meta.ID = fileID.String()
	if uploadedBy != nil {
		meta.UploadedBy = uploadedBy.String()
	}
	meta.CreatedAt = createdAt.UTC()
	return meta, content, nil
}
