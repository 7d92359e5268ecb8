package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileSystem stores files below <baseDir>/uploads using afero
type FileSystem struct {
	fs      afero.Fs
	baseDir string
	baseURL string
}

// NewFileSystem creates a new FileSystem instance.
// Files are served by the application under baseURL (e.g. "/uploads").
func NewFileSystem(baseDir, baseURL string) *FileSystem {
	if baseDir == "" {
		baseDir = "data"
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}

	// Use OsFs for production
	fs := afero.NewOsFs()

	// Ensure base directory exists
	if err := fs.MkdirAll(baseDir, 0755); err != nil {
		// If we can't create the directory, fall back to memory fs for safety
		fs = afero.NewMemMapFs()
	}

	return &FileSystem{
		fs:      fs,
		baseDir: baseDir,
		baseURL: baseURL,
	}
}

// NewMemoryFileSystem creates a FileSystem backed by memory (useful for testing)
func NewMemoryFileSystem() *FileSystem {
	return &FileSystem{
		fs:      afero.NewMemMapFs(),
		baseDir: "data",
		baseURL: "/uploads",
	}
}

// UploadsDir returns the directory uploaded files are written to
func (f *FileSystem) UploadsDir() string {
	return filepath.Join(f.baseDir, "uploads")
}

func (f *FileSystem) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.UploadsDir(), filepath.FromSlash(clean)), nil
}

// Save writes an uploaded file to the filesystem
func (f *FileSystem) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	// Ensure parent directory exists
	if err := f.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Create destination file
	dst, err := f.fs.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	// Copy data
	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

// Remove removes a file
func (f *FileSystem) Remove(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := f.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List walks the uploads directory and returns the keys of regular files under prefix
func (f *FileSystem) List(_ context.Context, prefix string) ([]string, error) {
	root, err := f.path(prefix)
	if err != nil {
		return nil, err
	}
	exists, err := afero.DirExists(f.fs, root)
	if err != nil || !exists {
		return nil, err
	}

	var keys []string
	err = afero.Walk(f.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.UploadsDir(), p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return keys, nil
}

// URL returns the URL path for an uploaded file
func (f *FileSystem) URL(key string) string {
	return joinURL(f.baseURL, key)
}

// Exists checks if a file or directory exists
func (f *FileSystem) Exists(key string) (bool, error) {
	p, err := f.path(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(f.fs, p)
}

// GetFs returns the underlying afero.Fs for advanced operations
func (f *FileSystem) GetFs() afero.Fs {
	return f.fs
}
