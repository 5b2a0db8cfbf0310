package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/cardflow/internal/domain"
)

// Ensure Tracker implements domain.Tracker.
var _ domain.Tracker = (*Tracker)(nil)

// Tracker implements domain.Tracker on the GitHub GraphQL API.
type Tracker struct {
	client *Client
}

// NewTracker creates a Tracker using the given client.
func NewTracker(client *Client) *Tracker {
	return &Tracker{client: client}
}

// Capabilities reports that createIssue accepts label IDs.
func (t *Tracker) Capabilities() domain.TrackerCapabilities {
	return domain.TrackerCapabilities{LabelsOnCreate: true}
}

// FetchIssueContext reads the issue and the projects of the repository with their columns.
func (t *Tracker) FetchIssueContext(ctx context.Context, owner, name string, number int) (*domain.IssueContext, error) {
	var data issueContextData
	err := t.client.Query(ctx, issueContextQuery, map[string]any{
		"owner":  owner,
		"name":   name,
		"number": number,
	}, &data)
	if err != nil {
		var gqlErrs GraphQLErrors
		if errors.As(err, &gqlErrs) && gqlErrs.notFound() {
			return nil, fmt.Errorf("%w: %s/%s#%d: %w", domain.ErrIssueNotFound, owner, name, number, err)
		}
		return nil, fmt.Errorf("fetch issue %s/%s#%d: %w", owner, name, number, err)
	}
	if data.Repository == nil || data.Repository.Issue == nil {
		return nil, fmt.Errorf("%w: %s/%s#%d", domain.ErrIssueNotFound, owner, name, number)
	}

	ictx := &domain.IssueContext{Issue: toIssue(*data.Repository.Issue)}
	for _, p := range data.Repository.Projects.Nodes {
		project := domain.Project{ID: p.ID, DatabaseID: p.DatabaseID, Name: p.Name}
		for _, c := range p.Columns.Nodes {
			project.Columns = append(project.Columns, domain.Column{ID: c.ID, DatabaseID: c.DatabaseID, Name: c.Name})
		}
		ictx.Projects = append(ictx.Projects, project)
	}
	return ictx, nil
}

// CreateIssue creates an issue, setting labels in the same call.
func (t *Tracker) CreateIssue(ctx context.Context, in domain.CreateIssueInput) (*domain.Issue, error) {
	input := map[string]any{
		"repositoryId": in.RepositoryID,
		"title":        in.Title,
	}
	if in.Body != "" {
		input["body"] = in.Body
	}
	if len(in.LabelIDs) > 0 {
		input["labelIds"] = in.LabelIDs
	}

	var data createIssueData
	if err := t.client.Mutate(ctx, createIssueMutation, map[string]any{"input": input}, &data); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	if data.CreateIssue.Issue.ID == "" {
		return nil, errors.New("create issue: response carries no issue")
	}
	issue := toIssue(data.CreateIssue.Issue)
	return &issue, nil
}

// UpdateIssue replaces the fields set in the input.
func (t *Tracker) UpdateIssue(ctx context.Context, in domain.UpdateIssueInput) error {
	input := map[string]any{"id": in.IssueID}
	if in.Body != nil {
		input["body"] = *in.Body
	}
	if in.LabelIDs != nil {
		labels := *in.LabelIDs
		if labels == nil {
			labels = []string{}
		}
		input["labelIds"] = labels
	}

	if err := t.client.Mutate(ctx, updateIssueMutation, map[string]any{"input": input}, nil); err != nil {
		return fmt.Errorf("update issue %s: %w", in.IssueID, err)
	}
	return nil
}

// AddToProject adds the content to the project and returns the item ID.
func (t *Tracker) AddToProject(ctx context.Context, projectID, contentID string) (string, error) {
	var data addToProjectData
	err := t.client.Mutate(ctx, addToProjectMutation, map[string]any{
		"projectId": projectID,
		"contentId": contentID,
	}, &data)
	if err != nil {
		return "", fmt.Errorf("add %s to project %s: %w", contentID, projectID, err)
	}
	return data.AddProjectV2ItemByID.Item.ID, nil
}

func toIssue(n issueNode) domain.Issue {
	issue := domain.Issue{
		ID:     n.ID,
		Number: n.Number,
		Title:  n.Title,
		Body:   n.Body,
	}
	for _, l := range n.Labels.Nodes {
		issue.Labels = append(issue.Labels, domain.Label{ID: l.ID, Name: l.Name})
	}
	return issue
}
