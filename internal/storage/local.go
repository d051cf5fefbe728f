package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/msomdec/portfolio-api/internal/domain"
)

// DefaultServePrefix is the URL path under which locally stored files are served.
const DefaultServePrefix = "/static/uploads/"

// LocalBackend implements domain.StorageBackend by writing files into a
// managed directory. Files are addressed by their generated filename.
type LocalBackend struct {
	dir         string
	servePrefix string
}

// NewLocalBackend creates the managed directory if needed and returns a backend rooted at it.
func NewLocalBackend(dir, servePrefix string) (*LocalBackend, error) {
	if dir == "" {
		dir = "uploads"
	}
	if servePrefix == "" {
		servePrefix = DefaultServePrefix
	}
	if !strings.HasPrefix(servePrefix, "/") {
		servePrefix = "/" + servePrefix
	}
	if !strings.HasSuffix(servePrefix, "/") {
		servePrefix += "/"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalBackend{dir: dir, servePrefix: servePrefix}, nil
}

// Dir returns the managed directory.
func (b *LocalBackend) Dir() string { return b.dir }

// ServePrefix returns the URL path prefix files are served under.
func (b *LocalBackend) ServePrefix() string { return b.servePrefix }

func (b *LocalBackend) Store(ctx context.Context, data []byte, opts domain.StoreOptions) (*domain.StoredArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	name, err := newFilename(opts.OriginalFilename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	path := filepath.Join(b.dir, name)

	// O_EXCL turns an unlikely name collision into an error instead of an overwrite.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create file: %w", domain.ErrStorage, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: write file: %w", domain.ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: close file: %w", domain.ErrStorage, err)
	}

	width, height, format := probeImage(data)
	return &domain.StoredArtifact{
		StorageRef: name,
		URL:        strings.TrimRight(opts.BaseURL, "/") + b.servePrefix + name,
		Width:      width,
		Height:     height,
		Format:     format,
	}, nil
}

// Delete removes the file named by ref. A missing file is not an error.
func (b *LocalBackend) Delete(ctx context.Context, ref string) error {
	if ref == "" || ref == "." || ref == ".." || ref != filepath.Base(ref) || strings.ContainsAny(ref, `/\`) {
		return fmt.Errorf("%w: bad storage ref %q", domain.ErrInvalidInput, ref)
	}
	if err := os.Remove(filepath.Join(b.dir, ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove file: %w", domain.ErrStorage, err)
	}
	return nil
}
