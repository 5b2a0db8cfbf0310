// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/runoshun/cardflow/internal/domain"
)

// Tracker call names recorded by MockTracker.
const (
	CallFetch        = "fetch"
	CallCreateIssue  = "create-issue"
	CallUpdateIssue  = "update-issue"
	CallAddToProject = "add-to-project"
)

// MockTracker is an in-memory test double for domain.Tracker.
// Fields are ordered to minimize memory padding.
type MockTracker struct {
	Context     *domain.IssueContext
	Errs        map[string]error // Error returned by every call of the given name
	Issues      map[string]*domain.Issue
	Calls       []string
	Created     []domain.CreateIssueInput
	Updates     []domain.UpdateIssueInput
	ProjectAdds [][2]string // (projectID, contentID)
	FailAt      int         // 1-based call index that fails with FailErr, 0 = never
	FailErr     error
	NextNumber  int
	Caps        domain.TrackerCapabilities
	mu          sync.Mutex
}

// NewMockTracker creates a MockTracker serving the given issue context.
func NewMockTracker(ictx *domain.IssueContext) *MockTracker {
	m := &MockTracker{
		Context:    ictx,
		Errs:       make(map[string]error),
		Issues:     make(map[string]*domain.Issue),
		NextNumber: 100,
	}
	if ictx != nil {
		issue := ictx.Issue
		m.Issues[issue.ID] = &issue
	}
	return m
}

// record appends the call and returns the configured failure, if any.
func (m *MockTracker) record(name string) error {
	m.Calls = append(m.Calls, name)
	if m.FailAt > 0 && len(m.Calls) == m.FailAt {
		if m.FailErr != nil {
			return m.FailErr
		}
		return fmt.Errorf("injected failure at call %d (%s)", m.FailAt, name)
	}
	return m.Errs[name]
}

// WriteCalls returns the recorded calls other than reads.
func (m *MockTracker) WriteCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var writes []string
	for _, c := range m.Calls {
		if c != CallFetch {
			writes = append(writes, c)
		}
	}
	return writes
}

// FetchIssueContext returns the configured context.
func (m *MockTracker) FetchIssueContext(_ context.Context, _, _ string, number int) (*domain.IssueContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(CallFetch); err != nil {
		return nil, err
	}
	if m.Context == nil || m.Context.Issue.Number != number {
		return nil, fmt.Errorf("%w: #%d", domain.ErrIssueNotFound, number)
	}
	return m.Context, nil
}

// CreateIssue stores the issue and assigns the next number.
func (m *MockTracker) CreateIssue(_ context.Context, in domain.CreateIssueInput) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(CallCreateIssue); err != nil {
		return nil, err
	}
	m.Created = append(m.Created, in)

	number := m.NextNumber
	m.NextNumber++
	issue := &domain.Issue{
		ID:     fmt.Sprintf("I_%d", number),
		Number: number,
		Title:  in.Title,
		Body:   in.Body,
	}
	if m.Caps.LabelsOnCreate {
		for _, id := range in.LabelIDs {
			issue.Labels = append(issue.Labels, domain.Label{ID: id})
		}
	}
	m.Issues[issue.ID] = issue

	created := *issue
	return &created, nil
}

// UpdateIssue applies the patch to the stored issue.
func (m *MockTracker) UpdateIssue(_ context.Context, in domain.UpdateIssueInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(CallUpdateIssue); err != nil {
		return err
	}
	m.Updates = append(m.Updates, in)

	issue, ok := m.Issues[in.IssueID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrIssueNotFound, in.IssueID)
	}
	if in.Body != nil {
		issue.Body = *in.Body
	}
	if in.LabelIDs != nil {
		issue.Labels = nil
		for _, id := range *in.LabelIDs {
			issue.Labels = append(issue.Labels, domain.Label{ID: id})
		}
	}
	return nil
}

// AddToProject records the project item.
func (m *MockTracker) AddToProject(_ context.Context, projectID, contentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(CallAddToProject); err != nil {
		return "", err
	}
	m.ProjectAdds = append(m.ProjectAdds, [2]string{projectID, contentID})
	return fmt.Sprintf("PVTI_%d", len(m.ProjectAdds)), nil
}

// Capabilities returns the configured capabilities.
func (m *MockTracker) Capabilities() domain.TrackerCapabilities {
	return m.Caps
}

// LogEntry is one message captured by MockLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	Issue    int
}

// MockLogger captures log messages.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level string, issue int, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, Issue: issue, Category: category, Msg: msg})
}

// Info records an info message.
func (m *MockLogger) Info(issue int, category, msg string) { m.add("INFO", issue, category, msg) }

// Debug records a debug message.
func (m *MockLogger) Debug(issue int, category, msg string) { m.add("DEBUG", issue, category, msg) }

// Warn records a warning.
func (m *MockLogger) Warn(issue int, category, msg string) { m.add("WARN", issue, category, msg) }

// Error records an error.
func (m *MockLogger) Error(issue int, category, msg string) { m.add("ERROR", issue, category, msg) }

// MockOutputWriter records outputs.
type MockOutputWriter struct {
	Values map[string]string
	Err    error
}

// SetOutput records the value.
func (m *MockOutputWriter) SetOutput(name, value string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Values == nil {
		m.Values = make(map[string]string)
	}
	m.Values[name] = value
	return nil
}

// MockEventSource returns a fixed event.
type MockEventSource struct {
	Err   error
	Event domain.CardMoveEvent
}

// ReadEvent returns the configured event.
func (m *MockEventSource) ReadEvent() (domain.CardMoveEvent, error) {
	return m.Event, m.Err
}

// MockRepositoryLocator returns a fixed repository.
type MockRepositoryLocator struct {
	Err   error
	Owner string
	Name  string
}

// Repository returns the configured repository.
func (m *MockRepositoryLocator) Repository() (string, string, error) {
	return m.Owner, m.Name, m.Err
}

// MockConfigManager is a test double for domain.ConfigManager.
type MockConfigManager struct {
	InitErr    error
	Written    *domain.Config
	Info       domain.ConfigInfo
	InitCalled bool
}

// ConfigInfo returns the configured info.
func (m *MockConfigManager) ConfigInfo() domain.ConfigInfo {
	return m.Info
}

// InitConfig records the config and returns InitErr.
func (m *MockConfigManager) InitConfig(cfg *domain.Config) error {
	m.InitCalled = true
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Written = cfg
	return nil
}

// MockConfigLoader returns a fixed config.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Config, nil
}
