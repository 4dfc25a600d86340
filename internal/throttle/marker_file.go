package throttle

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileMarker persists the throttle marker across CLI invocations. It stores
// the last trigger time as RFC 3339 text in a file under stateDir.
type FileMarker struct {
	path string
}

// NewFileMarker creates a file-backed marker store under stateDir.
func NewFileMarker(stateDir string) *FileMarker {
	return &FileMarker{path: filepath.Join(stateDir, "last_discovery")}
}

// Read returns the persisted marker. A missing file means no trigger has
// happened yet.
func (f *FileMarker) Read() (time.Time, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read throttle marker: %w", err)
	}
	marker, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt throttle marker: %w", err)
	}
	return marker, true, nil
}

// Write persists the marker, creating stateDir if needed.
func (f *FileMarker) Write(marker time.Time) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(marker.Format(time.RFC3339Nano)), 0o600); err != nil {
		return fmt.Errorf("failed to write throttle marker: %w", err)
	}
	return nil
}
