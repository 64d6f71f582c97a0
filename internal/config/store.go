package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// --- Path helpers ---

// ConfigDirPath returns ~/.wanderlist
func ConfigDirPath() string {
	return filepath.Join(os.Getenv("HOME"), ConfigDir)
}

// ConfigFilePath returns ~/.wanderlist/wanderlist.json
func ConfigFilePath() string {
	return filepath.Join(ConfigDirPath(), ConfigFile)
}

// --- Store ---

// Store manages reading and writing the unified JSON config.
type Store struct {
	mu      sync.Mutex
	path    string
	config  *WanderConfig
	modTime time.Time // last known modification time of config file
}

var (
	defaultStore *Store
	defaultMu    sync.Mutex
)

// DefaultStore returns the global Store singleton, loading from disk on
// first call and reloading when the file changes underneath us.
func DefaultStore() *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultStore == nil {
		defaultStore = &Store{path: ConfigFilePath()}
		if err := defaultStore.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		}
	} else {
		if info, err := os.Stat(defaultStore.path); err == nil {
			if info.ModTime().After(defaultStore.modTime) {
				defaultStore.Load()
			}
		}
	}
	return defaultStore
}

// ResetDefaultStore clears the singleton so the next DefaultStore() call
// re-initializes. Intended for tests.
func ResetDefaultStore() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultStore = nil
}

// NewStore creates a Store at an explicit path (for tests).
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.Load()
	return s
}

// --- Destination lists ---

// SavedDestinations returns a copy of the saved destination IDs in
// insertion order.
func (s *Store) SavedDestinations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	if s.config == nil {
		return nil
	}
	out := make([]string, len(s.config.SavedDestinations))
	copy(out, s.config.SavedDestinations)
	return out
}

// RejectedDestinations returns a copy of the rejected destination IDs.
func (s *Store) RejectedDestinations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	if s.config == nil {
		return nil
	}
	out := make([]string, len(s.config.RejectedDestinations))
	copy(out, s.config.RejectedDestinations)
	return out
}

// SaveDestination appends id to the saved list, removing it from the
// rejected list if present. Duplicates are ignored.
func (s *Store) SaveDestination(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	s.ensureConfig()
	s.config.RejectedDestinations = removeString(s.config.RejectedDestinations, id)
	s.config.SavedDestinations = appendUnique(s.config.SavedDestinations, id)
	return s.saveLocked()
}

// RejectDestination appends id to the rejected list, removing it from
// the saved list if present.
func (s *Store) RejectDestination(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	s.ensureConfig()
	s.config.SavedDestinations = removeString(s.config.SavedDestinations, id)
	s.config.RejectedDestinations = appendUnique(s.config.RejectedDestinations, id)
	return s.saveLocked()
}

// SetDestinations replaces both lists wholesale. Used when a sync
// payload overwrites local preferences.
func (s *Store) SetDestinations(saved, rejected []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	s.ensureConfig()
	s.config.SavedDestinations = dedupe(saved)
	s.config.RejectedDestinations = dedupe(rejected)
	return s.saveLocked()
}

// --- Filters ---

// GetFilters returns the current filter configuration, or nil.
func (s *Store) GetFilters() *Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	if s.config == nil {
		return nil
	}
	return s.config.Filters
}

// SetFilters replaces the filter configuration and saves.
func (s *Store) SetFilters(f *Filters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	s.ensureConfig()
	s.config.Filters = f
	return s.saveLocked()
}

// FiltersJSON returns the filter configuration as raw JSON for the sync
// payload, or nil when no filters are set.
func (s *Store) FiltersJSON() (json.RawMessage, error) {
	f := s.GetFilters()
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// SetFiltersJSON stores a raw filter object received from a sync
// payload. Unknown fields are preserved through the round trip only as
// far as Filters models them; sync correctness does not depend on it.
func (s *Store) SetFiltersJSON(raw json.RawMessage) error {
	if len(raw) == 0 {
		return s.SetFilters(nil)
	}
	var f Filters
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse synced filters: %w", err)
	}
	return s.SetFilters(&f)
}

// --- Settings ---

// GetDeviceName returns the configured device label, or "" when unset.
func (s *Store) GetDeviceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	if s.config == nil {
		return ""
	}
	return s.config.DeviceName
}

// SetDeviceName sets the device label override.
func (s *Store) SetDeviceName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	s.ensureConfig()
	s.config.DeviceName = name
	return s.saveLocked()
}

// GetWebPort returns the configured web API port, or DefaultWebPort.
func (s *Store) GetWebPort() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	if s.config == nil || s.config.WebPort == 0 {
		return DefaultWebPort
	}
	return s.config.WebPort
}

// GetSyncStore returns the sync store backend configuration, or nil for
// the default file backend.
func (s *Store) GetSyncStore() *SyncStoreConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	if s.config == nil {
		return nil
	}
	return s.config.SyncStore
}

// GetWebhooks returns the configured notification webhooks.
func (s *Store) GetWebhooks() []*WebhookConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	if s.config == nil {
		return nil
	}
	return s.config.Webhooks
}

// SetSyncStore replaces the sync store backend configuration.
func (s *Store) SetSyncStore(cfg *SyncStoreConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	s.ensureConfig()
	s.config.SyncStore = cfg
	return s.saveLocked()
}

// SetLastSync records the instant a sync payload was last applied (ms).
func (s *Store) SetLastSync(ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	s.ensureConfig()
	s.config.LastSync = ts
	return s.saveLocked()
}

// GetLastSync returns the instant a sync payload was last applied (ms).
func (s *Store) GetLastSync() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloadIfModified()
	if s.config == nil {
		return 0
	}
	return s.config.LastSync
}

// --- I/O ---

// Load reads the config file from disk.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// reloadIfModified reloads when the file changed since the last load.
// Must be called with s.mu held.
func (s *Store) reloadIfModified() {
	if info, err := os.Stat(s.path); err == nil {
		if info.ModTime().After(s.modTime) {
			// Ignore errors to avoid breaking operations
			s.loadLocked()
		}
	}
}

// loadLocked is the internal load implementation. Must be called with s.mu held.
func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.config = nil
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var cfg WanderConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if cfg.Version > CurrentConfigVersion {
		return fmt.Errorf("config version %d is newer than supported version %d, please upgrade wander",
			cfg.Version, CurrentConfigVersion)
	}
	cfg.Version = CurrentConfigVersion

	s.config = &cfg
	if info, statErr := os.Stat(s.path); statErr == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

// ensureConfig initializes an empty config. Must be called with s.mu held.
func (s *Store) ensureConfig() {
	if s.config == nil {
		s.config = &WanderConfig{Version: CurrentConfigVersion}
	}
}

// saveLocked writes the config to disk. Must be called with s.mu held.
func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return err
	}
	if info, statErr := os.Stat(s.path); statErr == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

// --- helpers ---

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	var out []string
	for _, s := range list {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
