package orchestrator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/compozy/releasewatch/internal/domain"
)

// ValidateVersion checks that version has the release form before it is persisted.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if !domain.IsReleaseVersion(version) {
		return fmt.Errorf("invalid version format: %s (expected: 1.2.3)", version)
	}
	return nil
}

// ValidateStatePath validates the version file path.
func ValidateStatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("state file path cannot be empty")
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return fmt.Errorf("state file path must name a file: %s", path)
	}
	if strings.HasSuffix(path, ".lock") || strings.HasSuffix(path, ".tmp") {
		return fmt.Errorf("state file path cannot end with .lock or .tmp: %s", path)
	}
	return nil
}
