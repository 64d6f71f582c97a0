package sync

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncPayload is the preference bundle transferred between devices.
// Filters stays raw JSON here: its structure belongs to the filtering
// layer, sync only carries it.
type SyncPayload struct {
	SavedDestinations    []string        `json:"saved_destinations"`
	RejectedDestinations []string        `json:"rejected_destinations"`
	Filters              json.RawMessage `json:"filters,omitempty"`
	LastSync             int64           `json:"last_sync"`
	DeviceName           string          `json:"device_name"`
}

// SyncRecord binds a code to an encrypted payload and the hash of the
// owning email. Immutable once created; records are only ever deleted.
// Timestamp is the encryption-time instant (ms) and must be kept
// verbatim — decryption re-derives the key from it.
type SyncRecord struct {
	Code          string `json:"code"`
	EmailHash     string `json:"email_hash"`
	ExpiresAt     int64  `json:"expires_at"`
	EncryptedData string `json:"encrypted_data"`
	Timestamp     int64  `json:"timestamp"`
}

// Expired reports whether the record is past its expiry at instant now.
func (r *SyncRecord) Expired(now time.Time) bool {
	return now.UnixMilli() > r.ExpiresAt
}

// RecordPair is the persisted [code, record] tuple. The on-disk (and
// remote) representation is a JSON array of these two-element arrays.
type RecordPair struct {
	Code   string
	Record *SyncRecord
}

// MarshalJSON encodes the pair as a two-element array.
func (p RecordPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Code, p.Record})
}

// UnmarshalJSON decodes a two-element [code, record] array.
func (p *RecordPair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected [code, record] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Code); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Record)
}

// Stats is returned by the registry's diagnostic stats operation.
type Stats struct {
	TotalCodes   int `json:"total_codes"`
	ExpiredCodes int `json:"expired_codes"`
	ActiveCodes  int `json:"active_codes"`
}
