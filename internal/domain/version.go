package domain

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// releaseVersionRegex accepts plain MAJOR.MINOR.PATCH with no prefix or suffix.
var releaseVersionRegex = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

// IsReleaseVersion reports whether s is a final release version.
// Pre-release tags, build metadata, "v" prefixes and empty strings are rejected.
func IsReleaseVersion(s string) bool {
	return releaseVersionRegex.MatchString(s)
}

// Version wraps semver.Version for additional methods.
type Version struct {
	*semver.Version
	raw string
}

// NewVersion creates a new Version from a string.
func NewVersion(s string) (*Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, err
	}
	return &Version{Version: v, raw: s}, nil
}

// Compare compares two versions.
func (v *Version) Compare(other *Version) int {
	return v.Version.Compare(other.Version)
}

// IsRelease reports whether the version carries no pre-release or build suffix.
func (v *Version) IsRelease() bool {
	return v.Prerelease() == "" && v.Metadata() == ""
}

// String returns the version exactly as it was parsed.
func (v *Version) String() string {
	return v.raw
}

// CompareVersionStrings orders two version strings by semver precedence.
// ok is false when either side does not parse.
func CompareVersionStrings(a, b string) (cmp int, ok bool) {
	va, err := NewVersion(a)
	if err != nil {
		return 0, false
	}
	vb, err := NewVersion(b)
	if err != nil {
		return 0, false
	}
	return va.Compare(vb), true
}
