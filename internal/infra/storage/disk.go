package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
)

// DiskStore writes document payloads under a base directory. Stored names are
// random; the original file name survives only in the metadata row.
type DiskStore struct {
	baseDir string
	maxSize int64
}

func NewDiskStore(baseDir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir, maxSize: maxSize}, nil
}

// Save streams contents to a new file and returns its relative path and size.
// Uploads over the size cap are aborted and cleaned up.
func (s *DiskStore) Save(ctx context.Context, fileName string, contents io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	stored := uuid.NewString() + sanitizeExt(fileName)
	fullPath := filepath.Join(s.baseDir, stored)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create document file: %w", err)
	}

	limited := contents
	if s.maxSize > 0 {
		limited = io.LimitReader(contents, s.maxSize+1)
	}

	size, err := io.Copy(f, limited)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxSize > 0 && size > s.maxSize {
		err = fmt.Errorf("document exceeds size limit of %d bytes", s.maxSize)
	}
	if err != nil {
		os.Remove(fullPath)
		return "", 0, err
	}

	return stored, size, nil
}

func (s *DiskStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("open document file: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document file: %w", err)
	}
	return nil
}

// resolve rejects paths that escape the base directory.
func (s *DiskStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if cleaned == "." || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid document path %q", path)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

// sanitizeExt keeps a short, alphanumeric extension from the original name.
func sanitizeExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

var _ port.DocumentStore = (*DiskStore)(nil)
