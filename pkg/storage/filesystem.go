package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage spools incoming photo uploads on disk until the blob store has them.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the spool directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "escolinha-uploads")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies r into a uniquely named spool file keeping the original extension.
// It returns the spool name and the number of bytes written.
func (s *LocalStorage) SaveStream(originalName string, r io.Reader) (string, int64, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	file, err := os.Create(s.resolve(name))
	if err != nil {
		return "", 0, fmt.Errorf("create spool file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	written, err := io.Copy(file, r)
	if err != nil {
		_ = os.Remove(file.Name())
		return "", 0, fmt.Errorf("write spool file: %w", err)
	}
	return name, written, nil
}

// Open returns a read-only handle for a spooled file.
func (s *LocalStorage) Open(name string) (*os.File, error) {
	file, err := os.Open(s.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("open spool file: %w", err)
	}
	return file, nil
}

// Delete removes a spooled file if present.
func (s *LocalStorage) Delete(name string) error {
	if err := os.Remove(s.resolve(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete spool file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes spool files left behind by interrupted requests.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read upload directory: %w", err)
	}
	deleted := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return deleted, fmt.Errorf("stat spool file: %w", err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := s.Delete(entry.Name()); err != nil {
			return deleted, err
		}
		deleted = append(deleted, entry.Name())
	}
	return deleted, nil
}

func (s *LocalStorage) resolve(name string) string {
	return filepath.Join(s.baseDir, filepath.Base(name))
}
