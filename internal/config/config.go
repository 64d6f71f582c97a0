package config

const (
	ConfigDir  = ".wanderlist"
	ConfigFile = "wanderlist.json"

	DefaultWebPort = 19870
)

// Config version history:
// - Version 1: saved/rejected destinations, filters, device name, web port, sync store
const CurrentConfigVersion = 1

// Filters is the destination filter configuration. The sync subsystem
// treats it as opaque JSON; only the filtering layer interprets it.
type Filters struct {
	Continents        []string `json:"continents,omitempty"`
	ExcludedCountries []string `json:"excluded_countries,omitempty"`
	BudgetRange       []int    `json:"budget_range,omitempty"` // [min, max] daily budget in USD
	CostLevels        []string `json:"cost_levels,omitempty"`  // budget, mid-range, luxury
	Climates          []string `json:"climates,omitempty"`
	Activities        []string `json:"activities,omitempty"`
	SafetyMin         int      `json:"safety_min,omitempty"`
	VisaRequired      bool     `json:"visa_required,omitempty"`
}

// SyncStoreConfig selects where sync codes are persisted.
type SyncStoreConfig struct {
	Backend   string `json:"backend,omitempty"` // "file" (default), "sqlite", "s3"
	Path      string `json:"path,omitempty"`    // sqlite database path
	Endpoint  string `json:"endpoint,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty"`
}

// WebhookEvent identifies a notification event type.
type WebhookEvent string

const (
	WebhookEventSyncCreated WebhookEvent = "sync.code_created"
	WebhookEventSyncApplied WebhookEvent = "sync.code_applied"
	WebhookEventSyncCleared WebhookEvent = "sync.data_cleared"
)

// WebhookConfig is a single notification webhook subscription.
type WebhookConfig struct {
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Events  []WebhookEvent    `json:"events"`
	Headers map[string]string `json:"headers,omitempty"`
	Enabled bool              `json:"enabled"`
}

// WanderConfig is the unified JSON config stored at ~/.wanderlist/wanderlist.json.
type WanderConfig struct {
	Version              int              `json:"version"`
	SavedDestinations    []string         `json:"saved_destinations"`
	RejectedDestinations []string         `json:"rejected_destinations"`
	Filters              *Filters         `json:"filters,omitempty"`
	DeviceName           string           `json:"device_name,omitempty"`
	WebPort              int              `json:"web_port,omitempty"`
	SyncStore            *SyncStoreConfig `json:"sync_store,omitempty"`
	Webhooks             []*WebhookConfig `json:"webhooks,omitempty"`
	LastSync             int64            `json:"last_sync,omitempty"` // ms, last applied sync
}

// --- Package-level convenience wrappers over the default store ---

func SavedDestinations() []string    { return DefaultStore().SavedDestinations() }
func RejectedDestinations() []string { return DefaultStore().RejectedDestinations() }

func SaveDestination(id string) error   { return DefaultStore().SaveDestination(id) }
func RejectDestination(id string) error { return DefaultStore().RejectDestination(id) }

func GetFilters() *Filters          { return DefaultStore().GetFilters() }
func SetFilters(f *Filters) error   { return DefaultStore().SetFilters(f) }
func GetDeviceName() string         { return DefaultStore().GetDeviceName() }
func GetWebPort() int               { return DefaultStore().GetWebPort() }
func GetSyncStore() *SyncStoreConfig { return DefaultStore().GetSyncStore() }
func GetWebhooks() []*WebhookConfig  { return DefaultStore().GetWebhooks() }
