package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/ff-events/internal/event"
)

// DefaultFileName is the snapshot document served to API clients
const DefaultFileName = "weekly_ecocar.json"

// ErrNotFound is returned by Load before any snapshot has been written
var ErrNotFound = errors.New("snapshot not found")

// Store holds the current snapshot
type Store interface {
	Load(ctx context.Context) (*event.Snapshot, error)
	Replace(ctx context.Context, snapshot *event.Snapshot) error
}

// FileStore handles persistence of the snapshot as a JSON file
type FileStore struct {
	dataDir  string
	fileName string
}

// NewFileStore creates a FileStore rooted at dataDir, creating the directory
// if needed. An empty fileName selects DefaultFileName.
func NewFileStore(dataDir, fileName string) (*FileStore, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}
	if dataDir == "" {
		dataDir = "."
	}
	if fileName == "" {
		fileName = DefaultFileName
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{
		dataDir:  dataDir,
		fileName: fileName,
	}, nil
}

// Path returns the path of the snapshot file
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, s.fileName)
}

// Load reads the snapshot from disk. UpdatedAt is the file's modification time.
func (s *FileStore) Load(ctx context.Context) (*event.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var events []*event.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	return event.NewSnapshot(events, info.ModTime()), nil
}

// Raw returns the snapshot document exactly as stored
func (s *FileStore) Raw(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return data, nil
}

// Replace writes the snapshot to a temporary file and renames it over the
// previous one, so readers never observe a partial document.
func (s *FileStore) Replace(ctx context.Context, snapshot *event.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	events := snapshot.Events
	if events == nil {
		events = make([]*event.Event, 0)
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, "."+s.fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}
