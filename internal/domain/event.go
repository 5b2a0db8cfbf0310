package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Event names and actions accepted by the pipeline.
const (
	EventProjectCard = "project_card"
	ActionMoved      = "moved"
)

// CardMoveEvent is the trigger payload for one run.
// Fields are ordered to minimize memory padding.
type CardMoveEvent struct {
	EventName      string // Wrapping event type (e.g. "project_card")
	Action         string // Card action (must be "moved" to proceed)
	RepositoryID   string // Repository node ID
	RepositoryName string // Repository name without owner
	Owner          string // Repository owner login (may be empty)
	Sender         string // Login of the user who moved the card
	ContentURL     string // API URL of the issue behind the card
	ProjectURL     string // API URL of the owning project
	ColumnID       int64  // Database ID of the column the card now sits in
}

// IsCardMove reports whether the event is a moved project card.
func (e CardMoveEvent) IsCardMove() bool {
	return e.EventName == EventProjectCard && e.Action == ActionMoved
}

// RepositoryOwner returns the owner login used to look up the repository.
// Falls back to the sender when the payload carries no owner.
func (e CardMoveEvent) RepositoryOwner() string {
	if e.Owner != "" {
		return e.Owner
	}
	return e.Sender
}

// CardTarget holds the identifiers extracted from the event reference URLs.
type CardTarget struct {
	IssueNumber int
	ProjectID   int64
}

// ParseCardTarget extracts the issue number and project database ID from the event URLs.
func ParseCardTarget(e CardMoveEvent) (CardTarget, error) {
	issue, err := lastPathSegment(e.ContentURL)
	if err != nil {
		return CardTarget{}, fmt.Errorf("content url: %w", err)
	}
	number, err := strconv.Atoi(issue)
	if err != nil || number <= 0 {
		return CardTarget{}, fmt.Errorf("content url %q: %w: issue number %q", e.ContentURL, ErrMalformedURL, issue)
	}

	project, err := lastPathSegment(e.ProjectURL)
	if err != nil {
		return CardTarget{}, fmt.Errorf("project url: %w", err)
	}
	projectID, err := strconv.ParseInt(project, 10, 64)
	if err != nil || projectID <= 0 {
		return CardTarget{}, fmt.Errorf("project url %q: %w: project id %q", e.ProjectURL, ErrMalformedURL, project)
	}

	return CardTarget{IssueNumber: number, ProjectID: projectID}, nil
}

// lastPathSegment returns the text after the final "/".
func lastPathSegment(raw string) (string, error) {
	i := strings.LastIndex(raw, "/")
	if i < 0 || i == len(raw)-1 {
		return "", fmt.Errorf("%w: %q", ErrMalformedURL, raw)
	}
	return raw[i+1:], nil
}
