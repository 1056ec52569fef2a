package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/spf13/afero"
)

const (
	// VersionFilePermissions defines the permissions for the version file
	VersionFilePermissions = 0644
	// VersionDirPermissions defines the permissions for its parent directory
	VersionDirPermissions = 0755
)

// VersionRepository persists the last announced release version.
type VersionRepository interface {
	// EnsureExists creates an empty version file when none exists yet.
	EnsureExists(ctx context.Context) (created bool, err error)
	// ReadPrevious returns the stored version; "" means none is known.
	ReadPrevious(ctx context.Context) (string, error)
	// WriteCurrent replaces the stored version.
	WriteCurrent(ctx context.Context, version string) error
	// Path returns the location of the version file.
	Path() string
}

// FileVersionRepository implements VersionRepository using a plain-text file.
type FileVersionRepository struct {
	fs   afero.Fs
	path string
}

// NewFileVersionRepository creates a new file-based version repository
func NewFileVersionRepository(fs afero.Fs, path string) *FileVersionRepository {
	if path == "" {
		path = "version.txt"
	}
	return &FileVersionRepository{fs: fs, path: path}
}

// Path returns the location of the version file.
func (r *FileVersionRepository) Path() string {
	return r.path
}

// EnsureExists creates the version file empty if it does not exist.
func (r *FileVersionRepository) EnsureExists(_ context.Context) (bool, error) {
	exists, err := afero.Exists(r.fs, r.path)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check %s: %w", domain.ErrStore, r.path, err)
	}
	if exists {
		return false, nil
	}
	if err := r.ensureDir(); err != nil {
		return false, err
	}
	if err := afero.WriteFile(r.fs, r.path, nil, VersionFilePermissions); err != nil {
		return false, fmt.Errorf("%w: failed to create %s: %w", domain.ErrStore, r.path, err)
	}
	return true, nil
}

// ReadPrevious returns the raw file content. A missing file reads as empty.
func (r *FileVersionRepository) ReadPrevious(_ context.Context) (string, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("%w: failed to read %s: %w", domain.ErrStore, r.path, err)
	}
	return string(data), nil
}

// WriteCurrent replaces the file content atomically using a temp file and rename.
func (r *FileVersionRepository) WriteCurrent(_ context.Context, version string) error {
	if err := r.ensureDir(); err != nil {
		return err
	}
	tempFile := r.path + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, []byte(version), VersionFilePermissions); err != nil {
		return fmt.Errorf("%w: failed to write temp version file: %w", domain.ErrStore, err)
	}
	if err := r.fs.Rename(tempFile, r.path); err != nil {
		if removeErr := r.fs.Remove(tempFile); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("%w: failed to rename version file: %w (temp cleanup: %v)", domain.ErrStore, err, removeErr)
		}
		return fmt.Errorf("%w: failed to rename version file: %w", domain.ErrStore, err)
	}
	return nil
}

// ensureDir creates the parent directory of the version file if needed.
func (r *FileVersionRepository) ensureDir() error {
	dir := filepath.Dir(r.path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := r.fs.MkdirAll(dir, VersionDirPermissions); err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", domain.ErrStore, dir, err)
	}
	return nil
}
