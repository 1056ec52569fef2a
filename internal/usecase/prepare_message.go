package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/compozy/releasewatch/internal/domain"
)

// PrepareMessageUseCase renders the release URL and the notification text.
type PrepareMessageUseCase struct {
	URLTemplate     string
	MessageTemplate string
}

// Execute fills release.URL and returns the message text.
func (uc *PrepareMessageUseCase) Execute(_ context.Context, release *domain.Release) (string, error) {
	if release == nil {
		return "", fmt.Errorf("release cannot be nil")
	}
	if !domain.IsReleaseVersion(release.Version) {
		return "", fmt.Errorf("refusing to announce non-release version %q", release.Version)
	}
	url, err := render("release-url", uc.URLTemplate, release)
	if err != nil {
		return "", err
	}
	release.URL = strings.TrimSpace(url)
	message, err := render("message", uc.MessageTemplate, release)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("rendered message is empty")
	}
	return message, nil
}

// render executes a template over Version, Previous and URL; any other field is an execution error.
func render(name, text string, release *domain.Release) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	data := struct {
		Version  string
		Previous string
		URL      string
	}{
		Version:  release.Version,
		Previous: release.Previous,
		URL:      release.URL,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}
