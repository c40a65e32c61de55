// Package asset stores uploaded images on local disk and exposes them
// by URL-shaped references. The row pointing at an asset owns it; the
// services sequence Save/Remove calls so no orphan outlives its row.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Store errors.
var (
	// ErrUnsupportedType indicates the upload is not a recognized image format.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrForeignReference indicates the URL does not point into this store.
	ErrForeignReference = errors.New("reference does not belong to this store")
)

// allowedExtensions are the image formats accepted for upload.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store persists uploaded files under a single directory and maps them
// to URL paths beneath baseURL.
type Store struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

// NewStore creates the content directory if needed and returns a Store.
func NewStore(dir, baseURL string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// Dir returns the directory files are stored under.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the upload to disk under a generated name and returns the
// URL reference to record in the owning row. The original filename only
// contributes its extension; the stored name is a fresh ULID, so
// concurrent uploads never collide.
func (s *Store) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := ulid.Make().String() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write asset file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close asset file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Remove deletes the file a reference points at. A reference outside
// this store's base URL is rejected; a file that is already gone is not
// an error.
func (s *Store) Remove(url string) error {
	name, err := s.fileName(url)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove asset file: %w", err)
	}
	return nil
}

// RemoveQuietly deletes a referenced file best-effort: failures are
// logged and swallowed so cleanup never fails a row operation.
func (s *Store) RemoveQuietly(url string) {
	if err := s.Remove(url); err != nil {
		s.logger.Warn("failed to remove asset file",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

// Exists reports whether the referenced file is present on disk.
func (s *Store) Exists(url string) bool {
	name, err := s.fileName(url)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// fileName maps a URL reference back to a bare file name under dir.
// path.Base strips any directory components, so a crafted reference
// cannot escape the content area.
func (s *Store) fileName(url string) (string, error) {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return "", ErrForeignReference
	}
	name := path.Base(strings.TrimPrefix(url, s.baseURL+"/"))
	if name == "" || name == "." || name == "/" {
		return "", ErrForeignReference
	}
	return name, nil
}
