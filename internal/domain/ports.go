package domain

import (
	"context"
)

// Tracker is the issue-tracking API a run mutates.
type Tracker interface {
	// FetchIssueContext reads the issue and the repository projects in one request.
	FetchIssueContext(ctx context.Context, owner, repo string, number int) (*IssueContext, error)

	// CreateIssue creates an issue and returns it with its number and node ID.
	CreateIssue(ctx context.Context, in CreateIssueInput) (*Issue, error)

	// UpdateIssue patches labels and/or body of an issue.
	UpdateIssue(ctx context.Context, in UpdateIssueInput) error

	// AddToProject files content into a project and returns the project item ID.
	AddToProject(ctx context.Context, projectID, contentID string) (string, error)

	// Capabilities describes optional tracker features.
	Capabilities() TrackerCapabilities
}

// TrackerCapabilities lists features that change the mutation sequence.
type TrackerCapabilities struct {
	LabelsOnCreate bool // Labels can be set by CreateIssue
}

// CreateIssueInput configures issue creation.
type CreateIssueInput struct {
	RepositoryID string
	Title        string
	Body         string
	LabelIDs     []string // Ignored unless the tracker supports LabelsOnCreate
}

// UpdateIssueInput configures an issue patch. Nil fields are left untouched.
type UpdateIssueInput struct {
	LabelIDs *[]string
	Body     *string
	IssueID  string
}

// EventSource provides the trigger event of a run.
type EventSource interface {
	// ReadEvent returns the card move event.
	ReadEvent() (CardMoveEvent, error)
}

// OutputWriter publishes run results to the hosting environment.
type OutputWriter interface {
	// SetOutput records a named output value.
	SetOutput(name, value string) error
}

// RepositoryLocator detects the repository the tool runs in.
type RepositoryLocator interface {
	// Repository returns owner and name of the repository.
	Repository() (owner, name string, err error)
}

// ConfigLoader loads configuration.
type ConfigLoader interface {
	// Load returns the effective configuration (defaults, file, environment).
	Load() (*Config, error)
}

// ConfigManager manages the configuration file.
type ConfigManager interface {
	// ConfigInfo returns information about the configuration file.
	ConfigInfo() ConfigInfo

	// InitConfig writes the configuration template.
	InitConfig(cfg *Config) error
}

// ConfigInfo describes a configuration file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// Logger is a leveled logger scoped by issue number and category.
// An issue number of 0 means the message is not tied to an issue.
type Logger interface {
	Info(issue int, category, msg string)
	Debug(issue int, category, msg string)
	Warn(issue int, category, msg string)
	Error(issue int, category, msg string)
}

// NopLogger discards all messages.
type NopLogger struct{}

// Info discards the message.
func (NopLogger) Info(int, string, string) {}

// Debug discards the message.
func (NopLogger) Debug(int, string, string) {}

// Warn discards the message.
func (NopLogger) Warn(int, string, string) {}

// Error discards the message.
func (NopLogger) Error(int, string, string) {}
