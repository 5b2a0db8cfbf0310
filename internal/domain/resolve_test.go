package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentBoard() Project {
	return Project{
		ID:         "PRO_1",
		DatabaseID: 100,
		Name:       "Content Creation",
		Columns: []Column{
			{ID: "COL_1", DatabaseID: 1, Name: "To do"},
			{ID: "COL_2", DatabaseID: 2, Name: "Planning"},
			{ID: "COL_3", DatabaseID: 3, Name: "Production"},
			{ID: "COL_4", DatabaseID: 4, Name: "Post-Production"},
			{ID: "COL_5", DatabaseID: 5, Name: "Published"},
			{ID: "COL_6", DatabaseID: 6, Name: "Ideas"},
		},
	}
}

func TestResolveStage_EveryColumn(t *testing.T) {
	board := contentBoard()
	projects := []Project{{ID: "PRO_0", DatabaseID: 99, Name: "Other"}, board}
	vocab := NewVocabulary(nil)

	for _, c := range board.Columns {
		res, err := ResolveStage(projects, 100, c.DatabaseID, vocab)
		require.NoError(t, err)
		assert.Equal(t, strings.ToUpper(c.Name), res.Name)
		assert.Equal(t, c, res.Column)
		assert.Equal(t, "PRO_1", res.Project.ID)
	}
}

func TestResolveStage_Stages(t *testing.T) {
	projects := []Project{contentBoard()}
	vocab := NewVocabulary(nil)

	tests := []struct {
		column int64
		expect Stage
	}{
		{1, StageToDo},
		{2, StagePlanning},
		{3, StageProduction},
		{4, StagePostProduction},
		{5, StagePublished},
		{6, StageUnrecognized},
	}
	for _, tt := range tests {
		res, err := ResolveStage(projects, 100, tt.column, vocab)
		require.NoError(t, err)
		assert.Equal(t, tt.expect, res.Stage, "column %d", tt.column)
	}
}

func TestResolveStage_KeepsColumnWhitespace(t *testing.T) {
	project := Project{ID: "PRO_1", DatabaseID: 100, Name: "Board", Columns: []Column{
		{ID: "COL_2", DatabaseID: 2, Name: " Planning "},
	}}

	res, err := ResolveStage([]Project{project}, 100, 2, NewVocabulary(nil))

	require.NoError(t, err)
	assert.Equal(t, " PLANNING ", res.Name)
	assert.Equal(t, StagePlanning, res.Stage)
}

func TestResolveStage_ColumnNotRecognized(t *testing.T) {
	_, err := ResolveStage([]Project{contentBoard()}, 100, 42, NewVocabulary(nil))
	assert.ErrorIs(t, err, ErrColumnNotRecognized)
}

func TestResolveStage_ProjectNotFound(t *testing.T) {
	_, err := ResolveStage([]Project{contentBoard()}, 7, 1, NewVocabulary(nil))
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = ResolveStage(nil, 100, 1, NewVocabulary(nil))
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestResolveStage_AmbiguousProject(t *testing.T) {
	_, err := ResolveStage([]Project{contentBoard(), contentBoard()}, 100, 1, NewVocabulary(nil))
	assert.ErrorIs(t, err, ErrAmbiguousProject)
}

func TestResolveStage_DuplicateColumn(t *testing.T) {
	board := contentBoard()
	board.Columns = append(board.Columns, Column{ID: "COL_X", DatabaseID: 2, Name: "Again"})

	_, err := ResolveStage([]Project{board}, 100, 2, NewVocabulary(nil))
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}
