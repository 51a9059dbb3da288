// Package local stores objects as files below a base directory.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// ProviderType identifies this backend in configuration.
const ProviderType = "local"

// Store writes objects below BaseDir. Object names use "/" separators.
type Store struct {
	baseDir string
}

// New creates the base directory if needed.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage: base_dir must be set")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, fmt.Errorf("local storage: failed to create base_dir '%s': %w", baseDir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("local storage: failed to stat base_dir '%s': %w", baseDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("local storage: base_dir '%s' is not a directory", baseDir)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	return &Store{baseDir: abs}, nil
}

func (s *Store) Type() string { return ProviderType }
func (s *Store) Close() error { return nil }

// Upload writes to a temporary file and renames it so readers never see a partial object.
func (s *Store) Upload(_ context.Context, objectName string, data io.Reader, _ string) error {
	fullPath, err := s.resolve(objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", objectName, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for '%s': %w", objectName, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write '%s': %w", objectName, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to move '%s' into place: %w", objectName, err)
	}
	logger.Debugf("Stored '%s' under %s.", objectName, s.baseDir)
	return nil
}

func (s *Store) Download(_ context.Context, objectName string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(objectName)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

func (s *Store) List(_ context.Context, prefix string, fn func(objectName string) error) error {
	return filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		return fn(name)
	})
}

func (s *Store) Delete(_ context.Context, objectName string) error {
	fullPath, err := s.resolve(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete '%s': %w", objectName, err)
	}
	return nil
}

// resolve rejects names that would escape the base directory.
func (s *Store) resolve(objectName string) (string, error) {
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(objectName))
	if fullPath != s.baseDir && !strings.HasPrefix(fullPath, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("object name '%s' resolves outside of base_dir", objectName)
	}
	return fullPath, nil
}
