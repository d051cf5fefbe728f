package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/portfolio-api/internal/domain"
)

const uploadColumns = `id, category, title, original_name, mime_type, size, storage_ref, image_url, width, height, format, created_at`

// uploadRepo implements domain.UploadRepository using SQLite.
type uploadRepo struct {
	db *sql.DB
}

// NewUploadRepository creates an upload metadata store backed by db.
func NewUploadRepository(db *DB) domain.UploadRepository {
	return &uploadRepo{db: db.SqlDB}
}

func (r *uploadRepo) Create(ctx context.Context, upload *domain.Upload) error {
	if upload.StorageRef == "" {
		return fmt.Errorf("%w: storage ref required", domain.ErrInvalidInput)
	}

	id := uuid.NewString()
	createdAt := upload.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO uploads (`+uploadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, upload.Category, upload.Title, upload.OriginalName, upload.MimeType, upload.Size,
		upload.StorageRef, upload.ImageURL, upload.Width, upload.Height, upload.Format,
		toUnixNano(createdAt),
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}

	upload.ID = id
	upload.CreatedAt = createdAt
	return nil
}

func (r *uploadRepo) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = ?`, id)
	upload, err := scanUpload(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get upload: %w", err)
	}
	return upload, nil
}

func (r *uploadRepo) List(ctx context.Context, category string) ([]domain.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []domain.Upload{}
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, *upload)
	}
	return uploads, rows.Err()
}

func (r *uploadRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM uploads WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*domain.Upload, error) {
	var (
		u         domain.Upload
		createdAt int64
	)
	if err := s.Scan(&u.ID, &u.Category, &u.Title, &u.OriginalName, &u.MimeType, &u.Size,
		&u.StorageRef, &u.ImageURL, &u.Width, &u.Height, &u.Format, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = fromUnixNano(createdAt)
	return &u, nil
}
