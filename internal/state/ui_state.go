// Package state persists small pieces of client state in the data dir:
// board preferences and the session cookie.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/taskdeck/internal/logger"
)

const uiStateFile = "ui-state.json"

// UIState holds persistent board preferences.
type UIState struct {
	Sidebar SidebarState `json:"sidebar"`
	Board   BoardState   `json:"board"`
}

// SidebarState holds activity sidebar visibility.
type SidebarState struct {
	Visible bool `json:"visible"`
}

// BoardState holds the category filter and focused lane.
type BoardState struct {
	Category *int64 `json:"category"`
	Lane     int    `json:"lane"`
}

// DefaultUIState returns the state used when nothing is saved.
func DefaultUIState() *UIState {
	return &UIState{
		Sidebar: SidebarState{Visible: true},
	}
}

// Load reads ui-state.json from dataDir, falling back to defaults.
func Load(dataDir string) *UIState {
	path := filepath.Join(dataDir, uiStateFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultUIState()
	}
	if err != nil {
		logger.Warn("Failed to read UI state file: %v", err)
		return DefaultUIState()
	}

	st := DefaultUIState()
	if err := sonic.Unmarshal(data, st); err != nil {
		logger.Warn("Failed to parse UI state JSON: %v", err)
		return DefaultUIState()
	}
	return st
}

// Save writes the state to dataDir/ui-state.json.
func Save(dataDir string, st *UIState) error {
	data, err := sonic.ConfigStd.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling UI state: %w", err)
	}
	return writeFile(dataDir, uiStateFile, data, 0644)
}

func writeFile(dataDir, name string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dataDir, name)
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	logger.Debug("state saved to %s", path)
	return nil
}
