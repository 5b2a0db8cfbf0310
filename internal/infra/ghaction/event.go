// Package ghaction adapts the GitHub Actions runtime: the event payload of the
// triggering workflow run and the step outputs file.
package ghaction

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/runoshun/cardflow/internal/domain"
)

// Environment variables set by the Actions runner.
const (
	EnvEventName = "GITHUB_EVENT_NAME"
	EnvEventPath = "GITHUB_EVENT_PATH"
	EnvOutput    = "GITHUB_OUTPUT"
)

// Ensure EventReader implements domain.EventSource.
var _ domain.EventSource = (*EventReader)(nil)

// payload is the subset of the webhook payload the pipeline reads.
type payload struct {
	Action     string `json:"action"`
	Repository struct {
		NodeID string `json:"node_id"`
		Name   string `json:"name"`
		Owner  struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
	ProjectCard struct {
		ContentURL string `json:"content_url"`
		ProjectURL string `json:"project_url"`
		ColumnID   int64  `json:"column_id"`
	} `json:"project_card"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// EventReader reads the event of the current workflow run from disk.
type EventReader struct {
	name string // Event name, e.g. "project_card"
	path string // Path to the JSON payload
}

// NewEventReader creates a reader for the given event name and payload path.
func NewEventReader(name, path string) *EventReader {
	return &EventReader{name: name, path: path}
}

// EventReaderFromEnv creates a reader from GITHUB_EVENT_NAME and GITHUB_EVENT_PATH.
func EventReaderFromEnv() *EventReader {
	return NewEventReader(os.Getenv(EnvEventName), os.Getenv(EnvEventPath))
}

// ReadEvent parses the payload into a card move event.
// Payloads of other events parse too; they just carry no card fields.
func (r *EventReader) ReadEvent() (domain.CardMoveEvent, error) {
	if r.name == "" || r.path == "" {
		return domain.CardMoveEvent{}, fmt.Errorf("%w: %s and %s must be set", domain.ErrEventUnavailable, EnvEventName, EnvEventPath)
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return domain.CardMoveEvent{}, fmt.Errorf("%w: %w", domain.ErrEventUnavailable, err)
	}
	return ParseEvent(r.name, data)
}

// ParseEvent converts a raw webhook payload into a card move event.
func ParseEvent(name string, data []byte) (domain.CardMoveEvent, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.CardMoveEvent{}, fmt.Errorf("%w: parse payload: %w", domain.ErrEventUnavailable, err)
	}
	return domain.CardMoveEvent{
		EventName:      name,
		Action:         p.Action,
		RepositoryID:   p.Repository.NodeID,
		RepositoryName: p.Repository.Name,
		Owner:          p.Repository.Owner.Login,
		Sender:         p.Sender.Login,
		ContentURL:     p.ProjectCard.ContentURL,
		ProjectURL:     p.ProjectCard.ProjectURL,
		ColumnID:       p.ProjectCard.ColumnID,
	}, nil
}
