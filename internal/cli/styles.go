package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/cardflow/internal/domain"
)

// Colors defines the palette of command output.
var Colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color

	// Stage colors
	ToDo           lipgloss.Color
	Planning       lipgloss.Color
	Production     lipgloss.Color
	PostProduction lipgloss.Color
	Published      lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"), // Purple
	Muted:   lipgloss.Color("#636E72"), // Gray
	Error:   lipgloss.Color("#D63031"), // Red
	Success: lipgloss.Color("#00B894"), // Green
	Warning: lipgloss.Color("#FDCB6E"), // Yellow

	ToDo:           lipgloss.Color("#74B9FF"), // Light blue
	Planning:       lipgloss.Color("#A29BFE"), // Lavender
	Production:     lipgloss.Color("#FDCB6E"), // Yellow
	PostProduction: lipgloss.Color("#E17055"), // Orange
	Published:      lipgloss.Color("#00B894"), // Green
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(Colors.Primary)
	mutedStyle   = lipgloss.NewStyle().Foreground(Colors.Muted)
	successStyle = lipgloss.NewStyle().Foreground(Colors.Success)
	warnStyle    = lipgloss.NewStyle().Foreground(Colors.Warning)
	errorStyle   = lipgloss.NewStyle().Foreground(Colors.Error)
)

// Status icons.
const (
	iconDone = "✓"
	iconSkip = "-"
	iconFail = "✗"
	iconStep = "└─"
)

// stageStyle returns the badge style of a stage.
func stageStyle(s domain.Stage) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch s {
	case domain.StageToDo:
		return style.Foreground(Colors.ToDo)
	case domain.StagePlanning:
		return style.Foreground(Colors.Planning)
	case domain.StageProduction:
		return style.Foreground(Colors.Production)
	case domain.StagePostProduction:
		return style.Foreground(Colors.PostProduction)
	case domain.StagePublished:
		return style.Foreground(Colors.Published)
	default:
		return style.Foreground(Colors.Muted)
	}
}

func renderStage(s domain.Stage) string {
	return stageStyle(s).Render(s.String())
}
