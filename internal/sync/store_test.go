package sync

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/wanderlist/wanderlist/internal/config"
)

func samplePairs() []RecordPair {
	return []RecordPair{
		{Code: "AZURE-BALI-7", Record: &SyncRecord{
			Code:          "AZURE-BALI-7",
			EmailHash:     "abc123def456ghi7",
			ExpiresAt:     1712432078901,
			EncryptedData: "bm9uY2UrY2lwaGVydGV4dA==",
			Timestamp:     1712345678901,
		}},
		{Code: "GOLDEN-TOKYO-42", Record: &SyncRecord{
			Code:          "GOLDEN-TOKYO-42",
			EmailHash:     "zzz999yyy888xxx7",
			ExpiresAt:     1712432078902,
			EncryptedData: "b3RoZXJjaXBoZXJ0ZXh0",
			Timestamp:     1712345678902,
		}},
	}
}

func TestRecordPairJSONShape(t *testing.T) {
	pair := samplePairs()[0]
	data, err := json.Marshal(pair)
	if err != nil {
		t.Fatal(err)
	}

	// The persisted form is [code, record], not an object.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("pair should encode as a JSON array: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("array has %d elements, want 2", len(raw))
	}

	var decoded RecordPair
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Code != pair.Code || decoded.Record.EmailHash != pair.Record.EmailHash {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestRecordPairRejectsWrongShape(t *testing.T) {
	var p RecordPair
	if err := json.Unmarshal([]byte(`["only-code"]`), &p); err == nil {
		t.Error("expected error for one-element array")
	}
	if err := json.Unmarshal([]byte(`{"code":"X"}`), &p); err == nil {
		t.Error("expected error for object form")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "sync_codes.json")
	store := NewFileStore(path)

	// Nothing stored yet.
	pairs, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pairs != nil {
		t.Fatalf("expected nil for missing file, got %v", pairs)
	}

	want := samplePairs()
	if err := store.Save(ctx, want); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Code != "AZURE-BALI-7" || got[1].Record.Timestamp != 1712345678902 {
		t.Errorf("loaded pairs = %+v", got)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sync_codes.json")
	os.WriteFile(path, []byte("{this is not json"), 0600)

	store := NewFileStore(path)
	pairs, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("corrupt file should degrade, not error: %v", err)
	}
	if pairs != nil {
		t.Errorf("expected nil pairs for corrupt file, got %v", pairs)
	}
}

func TestFileStoreClear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sync_codes.json")
	store := NewFileStore(path)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clearing a missing file should be a no-op: %v", err)
	}

	if err := store.Save(ctx, samplePairs()); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sync_codes.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	pairs, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 0 {
		t.Fatalf("fresh database should be empty, got %d pairs", len(pairs))
	}

	if err := store.Save(ctx, samplePairs()); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d pairs, want 2", len(got))
	}
	// ORDER BY code
	if got[0].Code != "AZURE-BALI-7" || got[1].Code != "GOLDEN-TOKYO-42" {
		t.Errorf("unexpected order: %s, %s", got[0].Code, got[1].Code)
	}
	if got[1].Record.EncryptedData != "b3RoZXJjaXBoZXJ0ZXh0" {
		t.Errorf("encrypted data = %q", got[1].Record.EncryptedData)
	}
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sync_codes.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Save(ctx, samplePairs()); err != nil {
		t.Fatal(err)
	}
	// Save the first pair only; the second must disappear.
	if err := store.Save(ctx, samplePairs()[:1]); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Code != "AZURE-BALI-7" {
		t.Errorf("pairs = %+v", got)
	}
}

func TestSQLiteStoreClear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sync_codes.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Save(ctx, samplePairs()); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty store after clear, got %d pairs", len(got))
	}
}

func TestSQLiteStoreRebuildsCorruptDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync_codes.db")
	os.WriteFile(path, []byte("definitely not a sqlite database"), 0600)

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("corrupt database should be rebuilt: %v", err)
	}
	defer store.Close()

	pairs, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 0 {
		t.Errorf("rebuilt database should be empty, got %d pairs", len(pairs))
	}
}

func TestNewStoreBackends(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		cfg  *config.SyncStoreConfig
		want string
	}{
		{nil, "file"},
		{&config.SyncStoreConfig{}, "file"},
		{&config.SyncStoreConfig{Backend: "file"}, "file"},
		{&config.SyncStoreConfig{Backend: "sqlite"}, "sqlite"},
	}
	for _, tt := range tests {
		store, err := NewStore(tt.cfg)
		if err != nil {
			t.Fatalf("NewStore(%+v): %v", tt.cfg, err)
		}
		if store.Name() != tt.want {
			t.Errorf("NewStore(%+v).Name() = %q, want %q", tt.cfg, store.Name(), tt.want)
		}
		if c, ok := store.(*SQLiteStore); ok {
			c.Close()
		}
	}

	if _, err := NewStore(&config.SyncStoreConfig{Backend: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
