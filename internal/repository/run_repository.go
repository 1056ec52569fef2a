package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/spf13/afero"
)

const (
	// RunRecordSchemaVersion defines the current schema version for run records
	RunRecordSchemaVersion = "1.0.0"
	// RunRecordPermissions defines the permissions for run record files
	RunRecordPermissions = 0600
	// RunRecordSuffix is appended to the version file path to name the run record
	RunRecordSuffix = ".run.json"
)

// ErrNoRunRecord is returned when no run has been recorded yet.
var ErrNoRunRecord = errors.New("no run recorded")

// RunRepository keeps the record of the most recent run
type RunRepository interface {
	SaveLast(ctx context.Context, run *domain.Run) error
	LoadLast(ctx context.Context) (*domain.Run, error)
}

// RunRecordMetadata contains metadata about the record file
type RunRecordMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	SavedAt       time.Time `json:"saved_at"`
}

// RunRecord wraps the run with metadata
type RunRecord struct {
	Metadata RunRecordMetadata `json:"metadata"`
	Run      *domain.Run       `json:"run"`
}

// JSONRunRepository implements RunRepository using one JSON file.
// Callers serialize access through the run lock.
type JSONRunRepository struct {
	fs   afero.Fs
	path string
}

// NewJSONRunRepository creates a run repository storing its record at path
func NewJSONRunRepository(fs afero.Fs, path string) *JSONRunRepository {
	return &JSONRunRepository{fs: fs, path: path}
}

// RunRecordPath returns the run record path that belongs to a version file.
func RunRecordPath(stateFile string) string {
	return stateFile + RunRecordSuffix
}

// Path returns the location of the record file.
func (r *JSONRunRepository) Path() string {
	return r.path
}

// SaveLast replaces the record with run, writing atomically
func (r *JSONRunRepository) SaveLast(_ context.Context, run *domain.Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := r.fs.MkdirAll(dir, VersionDirPermissions); err != nil {
			return fmt.Errorf("%w: failed to create %s: %w", domain.ErrStore, dir, err)
		}
	}
	runData, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run for checksum: %w", err)
	}
	record := RunRecord{
		Metadata: RunRecordMetadata{
			SchemaVersion: RunRecordSchemaVersion,
			Checksum:      calculateChecksum(runData),
			SavedAt:       time.Now(),
		},
		Run: run,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	tempFile := r.path + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, data, RunRecordPermissions); err != nil {
		return fmt.Errorf("%w: failed to write temp run record: %w", domain.ErrStore, err)
	}
	if err := r.fs.Rename(tempFile, r.path); err != nil {
		_ = r.fs.Remove(tempFile)
		return fmt.Errorf("%w: failed to rename run record: %w", domain.ErrStore, err)
	}
	return nil
}

// LoadLast reads and verifies the record
func (r *JSONRunRepository) LoadLast(_ context.Context) (*domain.Run, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRunRecord
		}
		return nil, fmt.Errorf("%w: failed to read run record: %w", domain.ErrStore, err)
	}
	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	if record.Metadata.SchemaVersion != RunRecordSchemaVersion {
		return nil, fmt.Errorf("incompatible schema version: expected %s, got %s",
			RunRecordSchemaVersion, record.Metadata.SchemaVersion)
	}
	if record.Run == nil {
		return nil, fmt.Errorf("run record is empty")
	}
	runData, err := json.Marshal(record.Run)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run for checksum validation: %w", err)
	}
	if record.Metadata.Checksum != calculateChecksum(runData) {
		return nil, fmt.Errorf("run record checksum mismatch: data may be corrupted")
	}
	return record.Run, nil
}

// calculateChecksum calculates SHA-256 checksum of data
func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
