package domain

import (
	"context"
	"slices"
	"time"
)

// MaxUploadSize is the largest image payload accepted for storage (8 MiB).
const MaxUploadSize = 8 * 1024 * 1024

var allowedCategories = map[string]bool{
	"cover":        true,
	"logo":         true,
	"manipulation": true,
	"print":        true,
	"social":       true,
	"thumbnail":    true,
}

// IsAllowedCategory reports whether name exactly matches one of the upload categories.
func IsAllowedCategory(name string) bool {
	return allowedCategories[name]
}

// Categories returns the allowed upload categories in sorted order.
func Categories() []string {
	names := make([]string, 0, len(allowedCategories))
	for name := range allowedCategories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Upload holds metadata about a stored image artifact.
type Upload struct {
	ID           string
	Category     string
	Title        string
	OriginalName string
	MimeType     string
	Size         int64
	StorageRef   string // Backend locator used to delete the artifact
	ImageURL     string
	Width        int
	Height       int
	Format       string
	CreatedAt    time.Time
}

// UploadRepository handles upload metadata persistence.
type UploadRepository interface {
	// Create assigns ID and CreatedAt (when unset) and inserts the record.
	Create(ctx context.Context, upload *Upload) error
	GetByID(ctx context.Context, id string) (*Upload, error)
	// List returns uploads newest first, restricted to category when non-empty.
	List(ctx context.Context, category string) ([]Upload, error)
	// Delete removes the record, returning ErrNotFound when no row was affected.
	Delete(ctx context.Context, id string) error
}

// StoreOptions describes where and how an artifact should be stored.
type StoreOptions struct {
	Category         string
	OriginalFilename string
	ContentType      string
	// BaseURL is the scheme and host of the current request, e.g. "https://api.example.com".
	// Backends that serve artifacts themselves use it to build the public URL.
	BaseURL string
}

// StoredArtifact is the result of a successful Store call.
type StoredArtifact struct {
	StorageRef string
	URL        string
	Width      int
	Height     int
	Format     string
}

// StorageBackend abstracts where image bytes live.
// Implementations must not return until the artifact is durably stored.
type StorageBackend interface {
	Store(ctx context.Context, data []byte, opts StoreOptions) (*StoredArtifact, error)
	Delete(ctx context.Context, ref string) error
}
