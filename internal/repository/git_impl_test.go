package repository

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagRef(name string) *plumbing.Reference {
	return plumbing.NewHashReference(plumbing.NewTagReferenceName(name), plumbing.ZeroHash)
}

func TestLatestReleaseTag(t *testing.T) {
	t.Run("Should pick the highest release tag by precedence", func(t *testing.T) {
		refs := []*plumbing.Reference{
			tagRef("1.9.0"),
			tagRef("1.39.1"),
			tagRef("1.10.2"),
			plumbing.NewHashReference(plumbing.NewBranchReferenceName("master"), plumbing.ZeroHash),
		}
		tag, ok := LatestReleaseTag(refs)
		require.True(t, ok)
		assert.Equal(t, "1.39.1", tag)
	})
	t.Run("Should ignore pre-release and prefixed tags", func(t *testing.T) {
		refs := []*plumbing.Reference{
			tagRef("1.39.1"),
			tagRef("2.0.0-rc.1"),
			tagRef("v3.0.0"),
			tagRef("nightly"),
		}
		tag, ok := LatestReleaseTag(refs)
		require.True(t, ok)
		assert.Equal(t, "1.39.1", tag)
	})
	t.Run("Should fold peeled annotated tags into their name", func(t *testing.T) {
		refs := []*plumbing.Reference{
			tagRef("1.40.0^{}"),
			tagRef("1.39.0"),
		}
		tag, ok := LatestReleaseTag(refs)
		require.True(t, ok)
		assert.Equal(t, "1.40.0", tag)
	})
	t.Run("Should report no tag when nothing qualifies", func(t *testing.T) {
		tag, ok := LatestReleaseTag([]*plumbing.Reference{tagRef("2.0.0-beta"), nil})
		assert.False(t, ok)
		assert.Empty(t, tag)
	})
}

func TestNewGitTagReleaseRepository(t *testing.T) {
	t.Run("Should reject an empty remote url", func(t *testing.T) {
		repo, err := NewGitTagReleaseRepository(" ", "")
		assert.Error(t, err)
		assert.Nil(t, repo)
	})
	t.Run("Should only authenticate when a token is given", func(t *testing.T) {
		repo, err := NewGitTagReleaseRepository("https://github.com/near/nearcore.git", "")
		require.NoError(t, err)
		assert.Nil(t, repo.(*gitTagReleaseRepository).getAuth())
		repo, err = NewGitTagReleaseRepository("https://github.com/near/nearcore.git", "tok")
		require.NoError(t, err)
		assert.NotNil(t, repo.(*gitTagReleaseRepository).getAuth())
	})
}
