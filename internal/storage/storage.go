// AngelaMos | 2026
// storage.go

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Store writes uploaded files under a base directory. Stored paths are
// always relative to the base so database rows survive a base move.
type Store struct {
	baseDir  string
	maxBytes int64
}

func New(baseDir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	return &Store{baseDir: baseDir, maxBytes: maxBytes}, nil
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
}

// SaveImage stores an avatar-type upload, rejecting anything whose sniffed
// content type is not an image format we accept.
func (s *Store) SaveImage(dir string, r io.Reader) (string, error) {
	return s.save(dir, r, func(mt *mimetype.MIME) error {
		if _, ok := imageExtensions[mt.Extension()]; !ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
		}
		return nil
	})
}

// SaveFile stores a report attachment. Any content type is allowed except
// executables and scripts.
func (s *Store) SaveFile(dir string, r io.Reader) (string, error) {
	return s.save(dir, r, func(mt *mimetype.MIME) error {
		if strings.HasPrefix(mt.String(), "application/x-executable") ||
			strings.HasPrefix(mt.String(), "application/x-sharedlib") {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
		}
		return nil
	})
}

func (s *Store) save(
	dir string,
	r io.Reader,
	check func(*mimetype.MIME) error,
) (string, error) {
	limited := io.LimitReader(r, s.maxBytes+1)

	data, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if err := check(mt); err != nil {
		return "", err
	}

	relDir := filepath.Clean(dir)
	if strings.HasPrefix(relDir, "..") || filepath.IsAbs(relDir) {
		return "", fmt.Errorf("invalid storage dir %q", dir)
	}

	if err := os.MkdirAll(filepath.Join(s.baseDir, relDir), 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + mt.Extension()
	relPath := filepath.Join(relDir, name)

	if err := os.WriteFile(filepath.Join(s.baseDir, relPath), data, 0o640); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return relPath, nil
}

// Open returns a reader over a previously stored file.
func (s *Store) Open(relPath string) (*os.File, error) {
	abs, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open stored file: %w", err)
	}

	return f, nil
}

// Remove deletes a stored file. A missing file is not an error: the row is
// already gone and the disk state matches the intent.
func (s *Store) Remove(relPath string) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}

	return nil
}

func (s *Store) resolve(relPath string) (string, error) {
	clean := filepath.Clean(relPath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid stored path %q", relPath)
	}
	return filepath.Join(s.baseDir, clean), nil
}
