package sync

import (
	"fmt"

	"github.com/wanderlist/wanderlist/internal/config"
)

// BuildLocalPayload snapshots the preference store into a SyncPayload.
func BuildLocalPayload(store *config.Store, device string) (*SyncPayload, error) {
	filters, err := store.FiltersJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}
	if device == "" {
		device = store.GetDeviceName()
	}
	if device == "" {
		device = DeviceName()
	}
	return &SyncPayload{
		SavedDestinations:    store.SavedDestinations(),
		RejectedDestinations: store.RejectedDestinations(),
		Filters:              filters,
		LastSync:             store.GetLastSync(),
		DeviceName:           device,
	}, nil
}

// ApplyLocalPayload overwrites local preferences with a payload received
// from another device and stamps the applied-sync instant.
func ApplyLocalPayload(store *config.Store, p *SyncPayload) error {
	if err := store.SetDestinations(p.SavedDestinations, p.RejectedDestinations); err != nil {
		return fmt.Errorf("apply destinations: %w", err)
	}
	if err := store.SetFiltersJSON(p.Filters); err != nil {
		return fmt.Errorf("apply filters: %w", err)
	}
	return store.SetLastSync(p.LastSync)
}
