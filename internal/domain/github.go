package domain

// Label is an issue label as seen by the tracker.
type Label struct {
	ID   string // Label node ID
	Name string
}

// Issue represents a GitHub issue.
// Fields are ordered to minimize memory padding.
type Issue struct {
	ID     string // Issue node ID
	Title  string
	Body   string
	Labels []Label
	Number int
}

// LabelIDs returns the node IDs of the issue labels in order.
func (i *Issue) LabelIDs() []string {
	ids := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		ids = append(ids, l.ID)
	}
	return ids
}

// Column is a project board column.
type Column struct {
	ID         string // Column node ID
	Name       string // Display name
	DatabaseID int64
}

// Project is a classic repository project board.
// Fields are ordered to minimize memory padding.
type Project struct {
	ID         string // Project node ID
	Name       string
	Columns    []Column
	DatabaseID int64
}

// IssueContext is the single read a run performs: the moved issue and the
// projects of its repository.
type IssueContext struct {
	Issue    Issue
	Projects []Project
}
