package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wanderlist/wanderlist/internal/config"
)

func setTestHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return dir
}

func TestCredentialsPath(t *testing.T) {
	home := setTestHome(t)
	got := CredentialsPath()
	want := filepath.Join(home, ".wanderlist", "credentials.env")
	if got != want {
		t.Errorf("CredentialsPath() = %q, want %q", got, want)
	}
}

func TestFileGetSet(t *testing.T) {
	f := &File{Entries: []Entry{
		{Key: "A", Value: "1"},
		{Key: "B", Value: "2"},
	}}

	if v := f.Get("A"); v != "1" {
		t.Errorf("Get(A) = %q, want %q", v, "1")
	}
	if v := f.Get("C"); v != "" {
		t.Errorf("Get(C) = %q, want empty", v)
	}

	// Set existing key
	f.Set("A", "10")
	if v := f.Get("A"); v != "10" {
		t.Errorf("after Set(A,10), Get(A) = %q, want %q", v, "10")
	}

	// Set new key
	f.Set("C", "3")
	if v := f.Get("C"); v != "3" {
		t.Errorf("after Set(C,3), Get(C) = %q, want %q", v, "3")
	}
	if len(f.Entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(f.Entries))
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.env")

	content := "WANDERLIST_S3_ENDPOINT=https://s3.example.com\nWANDERLIST_S3_ACCESS_KEY=AK123\nWANDERLIST_S3_BUCKET=wander\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if v := f.Get(KeyS3Endpoint); v != "https://s3.example.com" {
		t.Errorf("endpoint = %q", v)
	}
	if v := f.Get(KeyS3AccessKey); v != "AK123" {
		t.Errorf("access key = %q", v)
	}

	// Modify and save
	f.Set(KeyS3Bucket, "wander-prod")
	if err := f.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	f2, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after save error: %v", err)
	}
	if v := f2.Get(KeyS3Bucket); v != "wander-prod" {
		t.Errorf("after save, bucket = %q, want %q", v, "wander-prod")
	}
}

func TestSaveUsesRestrictivePerms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perm.env")

	f := &File{Path: path, Entries: []Entry{{Key: "K", Value: "V"}}}
	if err := f.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}
}

func TestLoadSkipsCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")

	content := `# This is a comment

KEY1=val1
KEY2=val2 # inline comment
# another comment
KEY3=val3
`
	os.WriteFile(path, []byte(content), 0600)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(f.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(f.Entries), f.Entries)
	}
	if v := f.Get("KEY2"); v != "val2" {
		t.Errorf("KEY2 = %q, want %q (inline comment should be stripped)", v, "val2")
	}
}

func TestLoadSkipsLinesWithoutEquals(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.env")

	content := "GOOD=value\nno_equals_here\nALSO_GOOD=yes\n"
	os.WriteFile(path, []byte(content), 0600)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(f.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(f.Entries))
	}
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/path.env")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "del.env")
	os.WriteFile(path, []byte("K=V\n"), 0600)

	f, _ := Load(path)
	if err := f.Delete(); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be deleted")
	}
}

func TestApplyCredentialsFillsEmptyFields(t *testing.T) {
	home := setTestHome(t)
	dir := filepath.Join(home, ".wanderlist")
	os.MkdirAll(dir, 0755)

	content := "WANDERLIST_S3_ENDPOINT=https://s3.example.com\n" +
		"WANDERLIST_S3_BUCKET=wander\n" +
		"WANDERLIST_S3_ACCESS_KEY=AK\n" +
		"WANDERLIST_S3_SECRET_KEY=SK\n"
	os.WriteFile(filepath.Join(dir, CredentialsFile), []byte(content), 0600)

	cfg := &config.SyncStoreConfig{
		Backend: "s3",
		Bucket:  "explicit-bucket", // explicit config wins
	}
	if err := ApplyCredentials(cfg); err != nil {
		t.Fatalf("ApplyCredentials() error: %v", err)
	}

	if cfg.Endpoint != "https://s3.example.com" {
		t.Errorf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.Bucket != "explicit-bucket" {
		t.Errorf("bucket = %q, explicit config should win", cfg.Bucket)
	}
	if cfg.AccessKey != "AK" || cfg.SecretKey != "SK" {
		t.Errorf("keys = %q / %q", cfg.AccessKey, cfg.SecretKey)
	}
}

func TestApplyCredentialsMissingFile(t *testing.T) {
	setTestHome(t)

	cfg := &config.SyncStoreConfig{Backend: "s3"}
	if err := ApplyCredentials(cfg); err != nil {
		t.Fatalf("missing credentials file should not be an error: %v", err)
	}
	if cfg.AccessKey != "" {
		t.Errorf("access key = %q, want empty", cfg.AccessKey)
	}
}
