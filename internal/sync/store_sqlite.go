package sync

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps sync records in a local SQLite database.
// Useful when several tools on the same machine share one registry.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLiteStore opens (or creates) the database at path. A database
// that fails to open or initialize is rebuilt from scratch — sync
// records are short-lived and never worth repairing by hand.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := openAndInit(path)
	if err != nil {
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(path + suffix)
		}
		db, err = openAndInit(path)
		if err != nil {
			return nil, fmt.Errorf("rebuild sync database: %w", err)
		}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func openAndInit(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Restrictive permissions - ignore error as file may not exist yet
	_ = os.Chmod(path, 0600)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sync_codes (
		code TEXT PRIMARY KEY,
		email_hash TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		encrypted_data TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) Load(ctx context.Context) ([]RecordPair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, email_hash, expires_at, encrypted_data, timestamp FROM sync_codes ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("load sync codes: %w", err)
	}
	defer rows.Close()

	var pairs []RecordPair
	for rows.Next() {
		rec := &SyncRecord{}
		if err := rows.Scan(&rec.Code, &rec.EmailHash, &rec.ExpiresAt, &rec.EncryptedData, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan sync code: %w", err)
		}
		pairs = append(pairs, RecordPair{Code: rec.Code, Record: rec})
	}
	return pairs, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, pairs []RecordPair) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save sync codes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sync_codes`); err != nil {
		tx.Rollback()
		return fmt.Errorf("save sync codes: %w", err)
	}
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sync_codes (code, email_hash, expires_at, encrypted_data, timestamp) VALUES (?, ?, ?, ?, ?)`,
			p.Code, p.Record.EmailHash, p.Record.ExpiresAt, p.Record.EncryptedData, p.Record.Timestamp); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert sync code %s: %w", p.Code, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_codes`)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
