// Package upload stores client files and serves them back by id. Content
// lives next to its metadata so a single lookup serves a download.
package upload

import (
	"context"
	"time"
)

// Metadata describes one stored file.
type Metadata struct {
	ID          string
	FileName    string
	ContentType string
	Size        int64
	UploadedBy  string
	CreatedAt   time.Time
}

// Store persists uploaded files.
type Store interface {
	Save(ctx context.Context, meta Metadata, content []byte) error
	Open(ctx context.Context, id string) (Metadata, []byte, error)
}
