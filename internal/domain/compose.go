package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// LinkedIssuesHeading introduces the back-link section in a parent issue body.
const LinkedIssuesHeading = "## Linked Issues"

var headingPattern = regexp.MustCompile(`^#{1,6}\s`)

// NewIssueSpec is the concrete content of a derived issue.
type NewIssueSpec struct {
	Title    string
	Body     string
	LabelIDs []string
}

// IssueCompositor derives the follow-up issue content from the source issue.
type IssueCompositor struct {
	sentinel string // Label node ID that never propagates
}

// NewIssueCompositor creates a compositor that strips the given sentinel label.
func NewIssueCompositor(sentinelLabel string) *IssueCompositor {
	return &IssueCompositor{sentinel: sentinelLabel}
}

// Compose builds the derived issue for a CreateAndLink transition.
func (c *IssueCompositor) Compose(source Issue, t Transition) NewIssueSpec {
	spec := NewIssueSpec{
		Title:    DerivedTitle(t.Stage, source.Title),
		LabelIDs: c.Labels(source.LabelIDs(), t.Rule.Label),
	}
	if t.Rule.Template != "" {
		spec.Body = fmt.Sprintf("- Parent Ticket: #%d\n---\n%s", source.Number, t.Rule.Template)
	}
	return spec
}

// Labels returns the source labels without the sentinel and with the stage label appended.
// Order is kept and no duplicate is introduced.
func (c *IssueCompositor) Labels(source []string, stageLabel string) []string {
	out := make([]string, 0, len(source)+1)
	seen := make(map[string]bool, len(source)+1)
	add := func(id string) {
		if id == "" || id == c.sentinel || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range source {
		add(id)
	}
	add(stageLabel)
	return out
}

// DerivedTitle formats the title of a derived issue.
func DerivedTitle(stage Stage, title string) string {
	return "[" + stage.String() + "]: " + title
}

// ParentPatch is the back-link appended to the source issue.
type ParentPatch struct {
	Stage  Stage
	Number int // Derived issue number
}

// Line renders the back-link bullet.
func (p ParentPatch) Line() string {
	return fmt.Sprintf("- %s: #%d", p.Stage, p.Number)
}

// ApplyTo returns body with the back-link appended to its Linked Issues section.
// The section is created at the end of the body when missing. Existing bullets
// are kept, so repeated transitions accumulate.
func (p ParentPatch) ApplyTo(body string) string {
	sep := "\n"
	if strings.Contains(body, "\r\n") {
		sep = "\r\n"
	}
	lines := strings.Split(body, sep)
	fenced := fencedLines(lines)

	head := -1
	for i, l := range lines {
		if !fenced[i] && strings.TrimSpace(l) == LinkedIssuesHeading {
			head = i
			break
		}
	}

	if head < 0 {
		trimmed := strings.TrimRight(body, "\r\n")
		if strings.TrimSpace(trimmed) == "" {
			return LinkedIssuesHeading + sep + p.Line()
		}
		return trimmed + sep + sep + LinkedIssuesHeading + sep + p.Line()
	}

	end := len(lines)
	for i := head + 1; i < len(lines); i++ {
		if !fenced[i] && headingPattern.MatchString(strings.TrimSpace(lines[i])) {
			end = i
			break
		}
	}
	last := head
	for i := head + 1; i < end; i++ {
		if strings.TrimSpace(lines[i]) != "" {
			last = i
		}
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:last+1]...)
	out = append(out, p.Line())
	out = append(out, lines[last+1:]...)
	return strings.Join(out, sep)
}

// fencedLines reports which lines are fence markers or sit inside a fenced code block.
func fencedLines(lines []string) []bool {
	fenced := make([]bool, len(lines))
	marker := ""
	for i, l := range lines {
		t := strings.TrimSpace(l)
		switch {
		case marker == "" && (strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")):
			marker = t[:3]
			fenced[i] = true
		case marker != "":
			fenced[i] = true
			if strings.HasPrefix(t, marker) {
				marker = ""
			}
		}
	}
	return fenced
}
