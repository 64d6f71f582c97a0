package sync

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/wanderlist/wanderlist/internal/config"
	"github.com/wanderlist/wanderlist/internal/envfile"
)

// Store persists the registry's [code, record] pairs. Every backend
// stores the same JSON array-of-pairs representation; records hold only
// ciphertext and email hashes, so a remote backend never sees plaintext.
type Store interface {
	// Load fetches all persisted pairs. Returns nil, nil when nothing
	// has been stored yet.
	Load(ctx context.Context) ([]RecordPair, error)
	// Save replaces the persisted pairs.
	Save(ctx context.Context, pairs []RecordPair) error
	// Clear erases the durable entry.
	Clear(ctx context.Context) error
	// Name returns the backend type name.
	Name() string
}

// NewStore creates a Store from the configured backend.
// The local JSON file is the default.
func NewStore(cfg *config.SyncStoreConfig) (Store, error) {
	backend := ""
	if cfg != nil {
		backend = cfg.Backend
	}
	switch backend {
	case "", "file":
		return NewFileStore(filepath.Join(config.ConfigDirPath(), SyncCodesFile)), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(config.ConfigDirPath(), "sync_codes.db")
		}
		return OpenSQLiteStore(path)
	case "s3":
		s3cfg := *cfg
		if err := envfile.ApplyCredentials(&s3cfg); err != nil {
			return nil, fmt.Errorf("load s3 credentials: %w", err)
		}
		return NewS3Store(&s3cfg)
	default:
		return nil, fmt.Errorf("unknown sync store backend: %q", backend)
	}
}
