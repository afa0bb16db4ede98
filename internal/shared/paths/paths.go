package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// File and directory names inside a storage root.
const (
	DatabaseFile = "erpshell.db"
	LogsDir      = "logs"
)

// Expand resolves a leading "~" to the user's home directory and cleans the
// result. Paths without "~" are only cleaned.
func Expand(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}

// Layout names the files kept under one storage root.
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at the expanded root.
func NewLayout(root string) Layout {
	return Layout{Root: Expand(root)}
}

// Snapshots returns the directory holding one file per storage namespace.
func (l Layout) Snapshots() string {
	return l.Root
}

// Database returns the SQLite database path.
func (l Layout) Database() string {
	return filepath.Join(l.Root, DatabaseFile)
}

// Logs returns the log directory.
func (l Layout) Logs() string {
	return filepath.Join(l.Root, LogsDir)
}

// LogFile returns the log file of a command, e.g. "tui".
func (l Layout) LogFile(name string) string {
	return filepath.Join(l.Logs(), name+".log")
}

// EnsureLogs creates the log directory.
func (l Layout) EnsureLogs() error {
	return os.MkdirAll(l.Logs(), 0o700)
}

// Within reports whether path lies inside the storage root.
func (l Layout) Within(path string) bool {
	rel, err := filepath.Rel(l.Root, Expand(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
