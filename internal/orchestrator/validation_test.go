package orchestrator

import (
	"context"
	"testing"

	"github.com/compozy/releasewatch/internal/domain"
	"github.com/compozy/releasewatch/internal/repository"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateVersion(t *testing.T) {
	t.Run("Should accept release versions", func(t *testing.T) {
		assert.NoError(t, ValidateVersion("1.39.1"))
		assert.NoError(t, ValidateVersion("10.0.0"))
	})
	t.Run("Should reject everything else", func(t *testing.T) {
		for _, v := range []string{"", "v1.0.0", "1.0", "1.0.0-rc.1", "1.0.0\n"} {
			assert.Error(t, ValidateVersion(v), v)
		}
	})
}

func TestValidateStatePath(t *testing.T) {
	t.Run("Should accept file paths", func(t *testing.T) {
		assert.NoError(t, ValidateStatePath("version.txt"))
		assert.NoError(t, ValidateStatePath("/var/lib/releasewatch/version.txt"))
	})
	t.Run("Should reject empty and directory paths", func(t *testing.T) {
		assert.Error(t, ValidateStatePath(" "))
		assert.Error(t, ValidateStatePath("state/"))
	})
	t.Run("Should reject names used for the lock and temp files", func(t *testing.T) {
		assert.Error(t, ValidateStatePath("version.txt.lock"))
		assert.Error(t, ValidateStatePath("version.txt.tmp"))
	})
}

func TestStatus(t *testing.T) {
	t.Run("Should report the stored version", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "version.txt", []byte("1.39.1"), 0o644))

		report, err := Status(context.Background(), repository.NewFileVersionRepository(fs, "version.txt"), nil)

		require.NoError(t, err)
		assert.Equal(t, "version.txt", report.Path)
		assert.Equal(t, "1.39.1", report.Version)
		assert.True(t, report.IsRelease)
	})
	t.Run("Should not create a missing file", func(t *testing.T) {
		fs := afero.NewMemMapFs()

		report, err := Status(context.Background(),
			repository.NewFileVersionRepository(fs, "version.txt"),
			repository.NewJSONRunRepository(fs, "version.txt.run.json"))

		require.NoError(t, err)
		assert.Nil(t, report.LastRun)
		assert.Empty(t, report.LastRunError)
		assert.Empty(t, report.Version)
		assert.False(t, report.IsRelease)
		exists, _ := afero.Exists(fs, "version.txt")
		assert.False(t, exists)
	})
	t.Run("Should include the last recorded run", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		runs := repository.NewJSONRunRepository(fs, "version.txt.run.json")
		run := domain.NewRun("run-1")
		run.Skip("version unchanged")
		require.NoError(t, runs.SaveLast(context.Background(), run))

		report, err := Status(context.Background(), repository.NewFileVersionRepository(fs, "version.txt"), runs)

		require.NoError(t, err)
		require.NotNil(t, report.LastRun)
		assert.Equal(t, "run-1", report.LastRun.ID)
		assert.Equal(t, "version unchanged", report.LastRun.NoOpReason)
	})
	t.Run("Should report an unreadable run record without failing", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "version.txt.run.json", []byte("{"), 0o600))

		report, err := Status(context.Background(),
			repository.NewFileVersionRepository(fs, "version.txt"),
			repository.NewJSONRunRepository(fs, "version.txt.run.json"))

		require.NoError(t, err)
		assert.Nil(t, report.LastRun)
		assert.NotEmpty(t, report.LastRunError)
	})
}
