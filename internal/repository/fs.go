package repository

import "github.com/spf13/afero"

// FileSystemRepository defines the interface for filesystem operations.

type FileSystemRepository interface {
	afero.Fs
}

// NewOsFileSystem returns the process filesystem rooted at the working directory.
func NewOsFileSystem() FileSystemRepository {
	return afero.NewOsFs()
}
