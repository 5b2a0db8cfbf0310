// Package git locates the GitHub repository of the local checkout.
package git

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/runoshun/cardflow/internal/domain"
)

// DefaultRemote is the remote read when none is configured.
const DefaultRemote = "origin"

// Ensure Locator implements domain.RepositoryLocator.
var _ domain.RepositoryLocator = (*Locator)(nil)

// Locator reads owner/name from a remote of the repository containing dir.
type Locator struct {
	dir    string
	remote string
}

// NewLocator creates a locator for the repository containing dir.
func NewLocator(dir string) *Locator {
	return &Locator{dir: dir, remote: DefaultRemote}
}

// WithRemote returns a locator reading the named remote.
func (l *Locator) WithRemote(name string) *Locator {
	return &Locator{dir: l.dir, remote: name}
}

// Repository returns the owner and name from the first URL of the remote.
func (l *Locator) Repository() (string, string, error) {
	repo, err := git.PlainOpenWithOptions(l.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", "", fmt.Errorf("%w: %s is not in a git repository", domain.ErrRepositoryRequired, l.dir)
		}
		return "", "", fmt.Errorf("open repository: %w", err)
	}

	remote, err := repo.Remote(l.remote)
	if err != nil {
		return "", "", fmt.Errorf("%w: remote %q: %w", domain.ErrRepositoryRequired, l.remote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", "", fmt.Errorf("%w: remote %q has no url", domain.ErrRepositoryRequired, l.remote)
	}
	return ParseRemoteURL(urls[0])
}

// ParseRemoteURL extracts owner and name from a remote URL.
// Accepts https and ssh URLs, scp-like "git@host:owner/name" and bare "owner/name".
func ParseRemoteURL(raw string) (string, string, error) {
	s := strings.TrimSpace(raw)
	var path string
	switch {
	case strings.Contains(s, "://"):
		u, err := url.Parse(s)
		if err != nil {
			return "", "", fmt.Errorf("%w: %q: %w", domain.ErrRepositoryRequired, raw, err)
		}
		path = u.Path
	case strings.Contains(s, ":"):
		path = s[strings.Index(s, ":")+1:]
	default:
		path = s
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("%w: cannot read owner/name from %q", domain.ErrRepositoryRequired, raw)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
