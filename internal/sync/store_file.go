package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SyncCodesFile is the default file name under the config directory.
const SyncCodesFile = "sync_codes.json"

// FileStore keeps sync records in a single local JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Name() string { return "file" }

// Load reads the stored pairs. A missing file means nothing stored yet;
// an unparsable file is discarded with a warning so a corrupt store can
// never wedge the registry.
func (s *FileStore) Load(ctx context.Context) ([]RecordPair, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var pairs []RecordPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: discarding unreadable sync store %s: %v\n", s.path, err)
		return nil, nil
	}
	return pairs, nil
}

func (s *FileStore) Save(ctx context.Context, pairs []RecordPair) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if pairs == nil {
		pairs = []RecordPair{}
	}
	data, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(s.path, data, 0600)
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
