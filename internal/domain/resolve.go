package domain

import (
	"fmt"
	"strings"
)

// Resolution is the outcome of locating a moved card on its board.
type Resolution struct {
	Project Project
	Column  Column
	Name    string // Column name upper-cased, whitespace kept
	Stage   Stage
}

// ResolveStage finds the project with the given database ID and the stage
// of the column the card was moved to.
// Exactly one project must match; zero or several matches are errors.
func ResolveStage(projects []Project, projectID, columnID int64, vocab Vocabulary) (Resolution, error) {
	project, err := findProject(projects, projectID)
	if err != nil {
		return Resolution{}, err
	}

	names, err := ColumnStageNames(project)
	if err != nil {
		return Resolution{}, err
	}
	name, ok := names[columnID]
	if !ok {
		return Resolution{}, fmt.Errorf("%w: column %d in project %q", ErrColumnNotRecognized, columnID, project.Name)
	}

	var column Column
	for _, c := range project.Columns {
		if c.DatabaseID == columnID {
			column = c
			break
		}
	}

	return Resolution{
		Project: project,
		Column:  column,
		Name:    name,
		Stage:   vocab.Classify(name),
	}, nil
}

// ColumnStageNames maps each column database ID of the project to its upper-cased name.
// Names are not trimmed; the vocabulary trims when classifying.
func ColumnStageNames(project Project) (map[int64]string, error) {
	names := make(map[int64]string, len(project.Columns))
	for _, c := range project.Columns {
		if _, dup := names[c.DatabaseID]; dup {
			return nil, fmt.Errorf("%w: %d in project %q", ErrDuplicateColumn, c.DatabaseID, project.Name)
		}
		names[c.DatabaseID] = strings.ToUpper(c.Name)
	}
	return names, nil
}

func findProject(projects []Project, projectID int64) (Project, error) {
	var matches []Project
	for _, p := range projects {
		if p.DatabaseID == projectID {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return Project{}, fmt.Errorf("%w: database id %d", ErrProjectNotFound, projectID)
	case 1:
		return matches[0], nil
	default:
		return Project{}, fmt.Errorf("%w: database id %d (%d matches)", ErrAmbiguousProject, projectID, len(matches))
	}
}
