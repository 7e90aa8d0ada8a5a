// ABOUTME: Manages the recently attached images list for the file picker
// ABOUTME: Stores recent image paths as JSON in the config directory

package recentfiles

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// MaxRecentFiles is the maximum number of recent files to keep
const MaxRecentFiles = 8

// RecentFiles manages the list of recently attached images
type RecentFiles struct {
	configDir string
	files     []string
}

type recentData struct {
	Files []string `json:"files"`
}

// New creates a new RecentFiles manager with the given config directory
func New(configDir string) *RecentFiles {
	return &RecentFiles{
		configDir: configDir,
		files:     nil,
	}
}

// configFile returns the path to the recent files JSON
func (rf *RecentFiles) configFile() string {
	return filepath.Join(rf.configDir, "recent-images.json")
}

// Load reads the recent files list from disk
// Filters out files that no longer exist
func (rf *RecentFiles) Load() ([]string, error) {
	data, err := os.ReadFile(rf.configFile())
	if os.IsNotExist(err) {
		rf.files = []string{}
		return rf.files, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		slog.Warn("Ignoring corrupt recent images file", "path", rf.configFile(), "error", err)
		rf.files = []string{}
		return rf.files, nil
	}

	// Images moved or deleted since they were picked drop out
	rf.files = make([]string, 0, len(recent.Files))
	for _, path := range recent.Files {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			rf.files = append(rf.files, path)
		}
	}

	return rf.files, nil
}

// Save replaces the recent files list on disk, keeping at most MaxRecentFiles
func (rf *RecentFiles) Save(files []string) error {
	if err := os.MkdirAll(rf.configDir, 0700); err != nil {
		return err
	}

	if len(files) > MaxRecentFiles {
		files = files[:MaxRecentFiles]
	}

	rf.files = files

	data, err := json.MarshalIndent(recentData{Files: files}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recent images: %w", err)
	}

	tmp, err := os.CreateTemp(rf.configDir, ".recent-images-*.json")
	if err != nil {
		return fmt.Errorf("failed to save recent images: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save recent images: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save recent images: %w", err)
	}
	return os.Rename(tmp.Name(), rf.configFile())
}

// Add moves paths to the front of the list, the first path first
func (rf *RecentFiles) Add(paths ...string) error {
	if rf.files == nil {
		if _, err := rf.Load(); err != nil {
			rf.files = []string{}
		}
	}

	seen := make(map[string]bool, len(paths))
	newFiles := make([]string, 0, len(rf.files)+len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			newFiles = append(newFiles, p)
		}
	}
	for _, f := range rf.files {
		if !seen[f] {
			newFiles = append(newFiles, f)
		}
	}

	return rf.Save(newFiles)
}

// List returns the current list of recent files
func (rf *RecentFiles) List() []string {
	if rf.files == nil {
		rf.Load()
	}
	return rf.files
}
