package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsReleaseVersion(t *testing.T) {
	t.Run("Should accept three numeric components", func(t *testing.T) {
		for _, v := range []string{"0.0.0", "1.39.1", "2.10.100", "01.2.3", "123456.7.89"} {
			assert.True(t, IsReleaseVersion(v), v)
		}
	})
	t.Run("Should reject pre-release and build suffixes", func(t *testing.T) {
		for _, v := range []string{"1.39.1-rc.1", "1.39.1+build5", "2.0.0-alpha", "1.2.3-"} {
			assert.False(t, IsReleaseVersion(v), v)
		}
	})
	t.Run("Should reject wrong segment counts and non-numeric components", func(t *testing.T) {
		for _, v := range []string{"", "1", "1.2", "1.2.3.4", "a.b.c", "1.x.3", "v1.2.3", " 1.2.3", "1.2.3\n", "1..3", "١.٢.٣"} {
			assert.False(t, IsReleaseVersion(v), v)
		}
	})
}

func TestNewVersion(t *testing.T) {
	t.Run("Should create valid version from string", func(t *testing.T) {
		version, err := NewVersion("1.2.3")
		require.NoError(t, err)
		assert.NotNil(t, version)
		assert.Equal(t, "1.2.3", version.String())
		assert.True(t, version.IsRelease())
	})
	t.Run("Should return error for invalid version string", func(t *testing.T) {
		version, err := NewVersion("invalid")
		assert.Error(t, err)
		assert.Nil(t, version)
	})
	t.Run("Should keep the raw spelling", func(t *testing.T) {
		version, err := NewVersion("v1.2.3")
		require.NoError(t, err)
		assert.Equal(t, "v1.2.3", version.String())
	})
	t.Run("Should flag prerelease versions", func(t *testing.T) {
		version, err := NewVersion("1.2.3-alpha")
		require.NoError(t, err)
		assert.False(t, version.IsRelease())
	})
}

func TestCompareVersionStrings(t *testing.T) {
	t.Run("Should order versions by precedence", func(t *testing.T) {
		cmp, ok := CompareVersionStrings("1.39.0", "1.39.1")
		require.True(t, ok)
		assert.Equal(t, -1, cmp)
		cmp, ok = CompareVersionStrings("2.0.0", "1.99.99")
		require.True(t, ok)
		assert.Equal(t, 1, cmp)
		cmp, ok = CompareVersionStrings("1.2.3", "1.2.3")
		require.True(t, ok)
		assert.Equal(t, 0, cmp)
	})
	t.Run("Should report unparsable input", func(t *testing.T) {
		_, ok := CompareVersionStrings("", "1.2.3")
		assert.False(t, ok)
	})
}
