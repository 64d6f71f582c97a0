package sync

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	gosync "sync"
	"time"
)

const (
	// CodeTTL is how long a sync code stays usable after creation.
	CodeTTL = 24 * time.Hour

	// maxCodeAttempts bounds collision retries during code generation.
	// The code space makes collisions with active records negligible;
	// the retry loop is defensive.
	maxCodeAttempts = 5
)

// Structural check only: local part, "@", domain with a dot.
// No network validation is attempted.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email passes the structural check used at
// both creation and apply time.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

// Registry manages the lifecycle of sync codes: creation, lookup,
// expiry, and persistence. Construct one per application instance with
// NewRegistry and pass it to whatever needs it.
type Registry struct {
	mu      gosync.Mutex
	store   Store
	records map[string]*SyncRecord
	now     func() time.Time
	device  string
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the wall clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithDeviceName overrides the resolved device label stamped onto
// applied payloads.
func WithDeviceName(name string) Option {
	return func(r *Registry) { r.device = name }
}

// NewRegistry hydrates the code→record map from the store and removes
// expired records. A store that fails to load (corrupt file, unreachable
// backend) degrades to an empty registry with a warning; it never takes
// sync down.
func NewRegistry(ctx context.Context, store Store, opts ...Option) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("sync store is nil")
	}
	r := &Registry{
		store:   store,
		records: make(map[string]*SyncRecord),
		now:     time.Now,
		device:  DeviceName(),
	}
	for _, opt := range opts {
		opt(r)
	}

	pairs, err := store.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load sync codes from %s store: %v\n", store.Name(), err)
		pairs = nil
	}
	for _, p := range pairs {
		if p.Code == "" || p.Record == nil {
			continue
		}
		r.records[NormalizeCode(p.Code)] = p.Record
	}

	if _, err := r.CleanupExpired(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to persist expired-code cleanup: %v\n", err)
	}
	return r, nil
}

// CreateSyncLink encrypts the payload under a key tied to email,
// registers it behind a fresh code valid for CodeTTL, persists the
// registry, and returns the code. The record survives a process restart
// before this returns.
func (r *Registry) CreateSyncLink(ctx context.Context, email string, payload *SyncPayload) (string, error) {
	if !ValidEmail(email) {
		return "", ErrInvalidEmail
	}
	if payload == nil {
		payload = &SyncPayload{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	code, err := r.freshCodeLocked(now)
	if err != nil {
		return "", err
	}

	timestamp := now.UnixMilli()
	encrypted, err := EncryptAt(payload, email, timestamp)
	if err != nil {
		return "", fmt.Errorf("encrypt payload: %w", err)
	}

	r.records[code] = &SyncRecord{
		Code:          code,
		EmailHash:     HashEmail(email),
		ExpiresAt:     now.Add(CodeTTL).UnixMilli(),
		EncryptedData: encrypted,
		Timestamp:     timestamp,
	}
	if err := r.saveLocked(ctx); err != nil {
		delete(r.records, code)
		return "", fmt.Errorf("persist sync code: %w", err)
	}
	return code, nil
}

// ApplySyncCode resolves a (code, email) pair back to the payload it was
// created with. The record is kept after a successful apply so the same
// code can sync further devices within its validity window.
func (r *Registry) ApplySyncCode(ctx context.Context, code, email string) (*SyncPayload, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[code]
	if !ok {
		return nil, ErrCodeNotFound
	}

	if rec.Expired(r.now()) {
		delete(r.records, code)
		if err := r.saveLocked(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to persist expired-code removal: %v\n", err)
		}
		return nil, ErrCodeExpired
	}

	// Ownership check before touching the cipher. The derived key fails
	// closed anyway if the email is wrong; this just fails faster.
	if HashEmail(email) != rec.EmailHash {
		return nil, ErrEmailMismatch
	}

	payload, err := Decrypt(rec.EncryptedData, email, rec.Timestamp)
	if err != nil {
		return nil, err
	}

	payload.LastSync = r.now().UnixMilli()
	payload.DeviceName = r.device
	return payload, nil
}

// CleanupExpired removes every record past its expiry and persists if
// anything was removed. Runs at construction; callers may also invoke it
// opportunistically.
func (r *Registry) CleanupExpired(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for code, rec := range r.records {
		if rec.Expired(now) {
			delete(r.records, code)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := r.saveLocked(ctx); err != nil {
		return removed, err
	}
	return removed, nil
}

// ClearAll empties the registry and erases the durable entry.
// Privacy escape hatch, not part of the normal flow.
func (r *Registry) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]*SyncRecord)
	return r.store.Clear(ctx)
}

// Stats returns diagnostic counts over the current records.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	st := Stats{TotalCodes: len(r.records)}
	for _, rec := range r.records {
		if rec.Expired(now) {
			st.ExpiredCodes++
		}
	}
	st.ActiveCodes = st.TotalCodes - st.ExpiredCodes
	return st
}

// freshCodeLocked generates a code that does not collide with an active
// record. Must be called with r.mu held.
func (r *Registry) freshCodeLocked(now time.Time) (string, error) {
	for range maxCodeAttempts {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		existing, ok := r.records[code]
		if !ok || existing.Expired(now) {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique sync code after %d attempts", maxCodeAttempts)
}

// saveLocked persists the full mapping in stable code order.
// Must be called with r.mu held.
func (r *Registry) saveLocked(ctx context.Context) error {
	codes := make([]string, 0, len(r.records))
	for code := range r.records {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	pairs := make([]RecordPair, 0, len(codes))
	for _, code := range codes {
		pairs = append(pairs, RecordPair{Code: code, Record: r.records[code]})
	}
	return r.store.Save(ctx, pairs)
}
