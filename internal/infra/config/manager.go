package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/cardflow/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages the repository config file.
type Manager struct {
	path string // Path to the config file
}

// NewManager creates a new Manager for the config file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// ConfigInfo returns information about the config file.
func (m *Manager) ConfigInfo() domain.ConfigInfo {
	content, err := os.ReadFile(m.path)
	if err != nil {
		return domain.ConfigInfo{
			Path:   m.path,
			Exists: false,
		}
	}
	return domain.ConfigInfo{
		Path:    m.path,
		Content: string(content),
		Exists:  true,
	}
}

// InitConfig creates the config file from the template rendered for cfg.
func (m *Manager) InitConfig(cfg *domain.Config) error {
	if _, err := os.Stat(m.path); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrConfigExists, m.path)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	content := domain.RenderConfigTemplate(cfg)
	return os.WriteFile(m.path, []byte(content), 0o600)
}
