package domain

import "errors"

var (
	// ErrMissingConfig marks a required setting that was not provided.
	ErrMissingConfig = errors.New("missing required configuration")
	// ErrReleaseNameMissing is a soft fetch failure: the upstream answered but
	// the document had no usable "name" field. Callers may retry it.
	ErrReleaseNameMissing = errors.New("release metadata has no version name")
	// ErrFetch is a hard fetch failure (transport, body or JSON decoding).
	ErrFetch = errors.New("failed to fetch release metadata")
	// ErrNoVersionFound is returned once every fetch attempt was a soft failure.
	ErrNoVersionFound = errors.New("no version found")
	// ErrStore wraps failures of the persisted version file.
	ErrStore = errors.New("version store failure")
	// ErrNotify wraps failures of a notification channel.
	ErrNotify = errors.New("notification failed")
)
