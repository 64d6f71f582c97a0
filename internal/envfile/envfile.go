package envfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wanderlist/wanderlist/internal/config"
)

// CredentialsFile holds backend secrets that should stay out of the
// main JSON config, one KEY=VALUE per line.
const CredentialsFile = "credentials.env"

// Keys recognized in the credentials file.
const (
	KeyS3Endpoint  = "WANDERLIST_S3_ENDPOINT"
	KeyS3Bucket    = "WANDERLIST_S3_BUCKET"
	KeyS3Region    = "WANDERLIST_S3_REGION"
	KeyS3AccessKey = "WANDERLIST_S3_ACCESS_KEY"
	KeyS3SecretKey = "WANDERLIST_S3_SECRET_KEY"
)

// CredentialsPath returns the full path to ~/.wanderlist/credentials.env.
func CredentialsPath() string {
	return filepath.Join(config.ConfigDirPath(), CredentialsFile)
}

// Entry represents a key=value pair in an .env file.
type Entry struct {
	Key   string
	Value string
}

// File represents a parsed .env file.
type File struct {
	Path    string
	Entries []Entry
}

// Get returns the value for a key, or empty string.
func (f *File) Get(key string) string {
	for _, e := range f.Entries {
		if e.Key == key {
			return e.Value
		}
	}
	return ""
}

// Set sets a key to a value. If the key exists, it updates; otherwise appends.
func (f *File) Set(key, value string) {
	for i, e := range f.Entries {
		if e.Key == key {
			f.Entries[i].Value = value
			return
		}
	}
	f.Entries = append(f.Entries, Entry{Key: key, Value: value})
}

// Load parses an .env file. Lines starting with # or empty lines are skipped.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f := &File{Path: path}

	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Strip inline comments
		if idx := strings.Index(line, " #"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		f.Entries = append(f.Entries, Entry{Key: k, Value: v})
	}
	return f, scanner.Err()
}

// Save writes the file back to disk. Secrets, so 0600.
func (f *File) Save() error {
	var b strings.Builder
	for _, e := range f.Entries {
		fmt.Fprintf(&b, "%s=%s\n", e.Key, e.Value)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(b.String()), 0600)
}

// Delete removes the .env file.
func (f *File) Delete() error {
	return os.Remove(f.Path)
}

// ApplyCredentials fills any empty fields of cfg from the credentials
// file. A missing file is not an error; explicit config always wins.
func ApplyCredentials(cfg *config.SyncStoreConfig) error {
	f, err := Load(CredentialsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = f.Get(KeyS3Endpoint)
	}
	if cfg.Bucket == "" {
		cfg.Bucket = f.Get(KeyS3Bucket)
	}
	if cfg.Region == "" {
		cfg.Region = f.Get(KeyS3Region)
	}
	if cfg.AccessKey == "" {
		cfg.AccessKey = f.Get(KeyS3AccessKey)
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = f.Get(KeyS3SecretKey)
	}
	return nil
}
