package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/msomdec/portfolio-api/internal/domain"
)

// UploadInput is a single inbound image upload.
type UploadInput struct {
	Data         []byte
	MimeType     string
	OriginalName string
	Category     string
	Title        string
	// BaseURL is the scheme and host the request arrived on.
	BaseURL string
}

// UploadService orchestrates image uploads, listing, and deletion.
// Artifacts are written before their metadata and removed after it.
type UploadService struct {
	uploads domain.UploadRepository
	backend domain.StorageBackend
}

// NewUploadService creates a new UploadService.
func NewUploadService(uploads domain.UploadRepository, backend domain.StorageBackend) *UploadService {
	return &UploadService{uploads: uploads, backend: backend}
}

// Create validates the payload, stores the artifact, then records its metadata.
// Nothing is sent to the backend unless every validation passes.
func (s *UploadService) Create(ctx context.Context, in UploadInput) (*domain.Upload, error) {
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: file required", domain.ErrInvalidInput)
	}
	if !domain.IsAllowedCategory(in.Category) {
		return nil, fmt.Errorf("%w: invalid category (allowed: %s)", domain.ErrInvalidInput, strings.Join(domain.Categories(), ", "))
	}
	if !strings.HasPrefix(in.MimeType, "image/") {
		return nil, fmt.Errorf("%w: only image files are allowed", domain.ErrInvalidInput)
	}
	if len(in.Data) > domain.MaxUploadSize {
		return nil, fmt.Errorf("%w: image exceeds 8MB limit", domain.ErrInvalidInput)
	}

	artifact, err := s.backend.Store(ctx, in.Data, domain.StoreOptions{
		Category:         in.Category,
		OriginalFilename: in.OriginalName,
		ContentType:      in.MimeType,
		BaseURL:          in.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	title := in.Title
	if title == "" {
		title = in.OriginalName
	}

	upload := &domain.Upload{
		Category:     in.Category,
		Title:        title,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         int64(len(in.Data)),
		StorageRef:   artifact.StorageRef,
		ImageURL:     artifact.URL,
		Width:        artifact.Width,
		Height:       artifact.Height,
		Format:       artifact.Format,
	}

	if err := s.uploads.Create(ctx, upload); err != nil {
		// Best-effort cleanup of the stored artifact.
		if derr := s.backend.Delete(ctx, artifact.StorageRef); derr != nil {
			slog.Warn("remove artifact after failed insert", "ref", artifact.StorageRef, "error", derr)
		}
		return nil, fmt.Errorf("create upload record: %w", err)
	}

	return upload, nil
}

// List returns uploads newest first, optionally restricted to one category.
func (s *UploadService) List(ctx context.Context, category string) ([]domain.Upload, error) {
	return s.uploads.List(ctx, category)
}

// Delete removes the metadata record and then, best-effort, its artifact.
// The record deletion decides the outcome: once it succeeds, a failing
// artifact delete is logged and the call still succeeds.
func (s *UploadService) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid id", domain.ErrInvalidInput)
	}
	// Records are keyed by the canonical lower-case hyphenated form.
	id = parsed.String()

	upload, err := s.uploads.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get upload: %w", err)
	}

	// Concurrent deletes race here; only one sees a row affected.
	if err := s.uploads.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete upload record: %w", err)
	}

	if err := s.backend.Delete(ctx, upload.StorageRef); err != nil {
		slog.Warn("artifact delete failed; artifact may be orphaned",
			"id", id, "ref", upload.StorageRef, "error", err)
	}

	return nil
}
