package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardMoveEvent_IsCardMove(t *testing.T) {
	assert.True(t, CardMoveEvent{EventName: "project_card", Action: "moved"}.IsCardMove())
	assert.False(t, CardMoveEvent{EventName: "project_card", Action: "created"}.IsCardMove())
	assert.False(t, CardMoveEvent{EventName: "issues", Action: "moved"}.IsCardMove())
}

func TestCardMoveEvent_RepositoryOwner(t *testing.T) {
	assert.Equal(t, "acme", CardMoveEvent{Owner: "acme", Sender: "octocat"}.RepositoryOwner())
	assert.Equal(t, "octocat", CardMoveEvent{Sender: "octocat"}.RepositoryOwner())
}

func TestParseCardTarget(t *testing.T) {
	target, err := ParseCardTarget(CardMoveEvent{
		ContentURL: "https://api.github.com/repos/api-playground/projects-test/issues/3",
		ProjectURL: "https://api.github.com/projects/1234567",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, target.IssueNumber)
	assert.Equal(t, int64(1234567), target.ProjectID)
}

func TestParseCardTarget_Malformed(t *testing.T) {
	tests := []struct {
		name       string
		contentURL string
		projectURL string
	}{
		{"no slash in content url", "issue-3", "https://api.github.com/projects/1"},
		{"trailing slash", "https://api.github.com/repos/o/r/issues/", "https://api.github.com/projects/1"},
		{"non numeric issue", "https://api.github.com/repos/o/r/issues/abc", "https://api.github.com/projects/1"},
		{"zero issue", "https://api.github.com/repos/o/r/issues/0", "https://api.github.com/projects/1"},
		{"no slash in project url", "https://api.github.com/repos/o/r/issues/3", "1"},
		{"non numeric project", "https://api.github.com/repos/o/r/issues/3", "https://api.github.com/projects/x"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCardTarget(CardMoveEvent{ContentURL: tt.contentURL, ProjectURL: tt.projectURL})
			if !errors.Is(err, ErrMalformedURL) {
				t.Errorf("ParseCardTarget error = %v, want ErrMalformedURL", err)
			}
		})
	}
}
