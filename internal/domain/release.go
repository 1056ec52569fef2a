package domain

// Release holds all metadata related to a detected release.

type Release struct {
	Version  string
	Previous string
	URL      string
}
