package domain

import "strings"

// Stage is a workflow phase derived from a board column name.
type Stage int

const (
	StageUnrecognized   Stage = iota // Column name outside the known vocabulary
	StageToDo                        // Backlog column, no follow-up work
	StagePlanning                    // Pre-production planning
	StageProduction                  // Recording / editing
	StagePostProduction              // Review, captions, thumbnails
	StagePublished                   // Released, terminal
)

// Canonical column names (upper-cased) for the recognized stages.
const (
	StageNameToDo           = "TO DO"
	StageNamePlanning       = "PLANNING"
	StageNameProduction     = "PRODUCTION"
	StageNamePostProduction = "POST-PRODUCTION"
	StageNamePublished      = "PUBLISHED"
)

// AllStages returns the recognized stages in board order.
func AllStages() []Stage {
	return []Stage{
		StageToDo,
		StagePlanning,
		StageProduction,
		StagePostProduction,
		StagePublished,
	}
}

// String returns the canonical upper-cased name of the stage.
func (s Stage) String() string {
	switch s {
	case StageToDo:
		return StageNameToDo
	case StagePlanning:
		return StageNamePlanning
	case StageProduction:
		return StageNameProduction
	case StagePostProduction:
		return StageNamePostProduction
	case StagePublished:
		return StageNamePublished
	default:
		return "UNRECOGNIZED"
	}
}

// Key returns the lower-case identifier used in configuration files
// (e.g. "post-production" for [stages.post-production]).
func (s Stage) Key() string {
	switch s {
	case StageToDo:
		return "to-do"
	case StageUnrecognized:
		return ""
	default:
		return strings.ToLower(s.String())
	}
}

// IsActionable reports whether moving a card into the stage spawns a follow-up issue.
func (s Stage) IsActionable() bool {
	return s == StagePlanning || s == StageProduction || s == StagePostProduction
}

// IsRecognized reports whether the stage is part of the known vocabulary.
func (s Stage) IsRecognized() bool {
	return s != StageUnrecognized
}

// ParseStageKey parses a configuration key ("planning", "post-production", ...).
func ParseStageKey(key string) (Stage, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, s := range AllStages() {
		if s.Key() == k {
			return s, true
		}
	}
	return StageUnrecognized, false
}

// StageName normalizes a column display name into a stage name.
func StageName(columnName string) string {
	return strings.ToUpper(strings.TrimSpace(columnName))
}

// Vocabulary maps upper-cased column names to stages.
// The zero value classifies every name as unrecognized.
type Vocabulary struct {
	names map[string]Stage
}

// NewVocabulary returns the canonical vocabulary extended with per-stage aliases.
// Aliases are matched case-insensitively. Later aliases override earlier ones.
func NewVocabulary(aliases map[Stage][]string) Vocabulary {
	names := make(map[string]Stage, len(AllStages()))
	for _, s := range AllStages() {
		names[s.String()] = s
	}
	for _, s := range AllStages() {
		for _, alias := range aliases[s] {
			if n := StageName(alias); n != "" {
				names[n] = s
			}
		}
	}
	return Vocabulary{names: names}
}

// Classify returns the stage for an upper-cased stage name.
// Unknown names yield StageUnrecognized.
func (v Vocabulary) Classify(name string) Stage {
	if s, ok := v.names[StageName(name)]; ok {
		return s
	}
	return StageUnrecognized
}
