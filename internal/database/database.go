// Package database provides SQLite database connection management for csvcatalog.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/tomashevich/csvcatalog/internal/crypto"
)

// ErrNoDatabasePath is returned when no database file has been configured.
var ErrNoDatabasePath = errors.New("database path is not set, use 'settings dbfile' or --db")

// PasswordPrompt asks the user for the database password. Injected so
// commands can use a terminal prompt and tests can supply a fixed value.
type PasswordPrompt func() (string, error)

// Options configures how the database file is opened.
type Options struct {
	// Path is the catalog database file.
	Path string
	// Encrypted indicates the file on disk is password-encrypted.
	Encrypted bool
	// Prompt supplies the password when Encrypted is set.
	Prompt PasswordPrompt
}

// Manager owns the process-wide database handle. When encryption is enabled
// it transparently decrypts the file into a temporary working copy on Open
// and re-encrypts it back on Close.
type Manager struct {
	DB *sql.DB

	opts     Options
	password string
	workPath string // temp plaintext copy; empty when not encrypted
}

// NewManager creates a database manager.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Open establishes the database connection, verifying it with a ping.
func (m *Manager) Open(ctx context.Context) error {
	if m.opts.Path == "" {
		return ErrNoDatabasePath
	}
	if info, err := os.Stat(m.opts.Path); err == nil && info.IsDir() {
		return fmt.Errorf("database path '%s' is a directory", m.opts.Path)
	}

	path := m.opts.Path
	if m.opts.Encrypted {
		if m.opts.Prompt == nil {
			return errors.New("database is encrypted but no password prompt is available")
		}
		password, err := m.opts.Prompt()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		workPath, err := crypto.DecryptToTemp(m.opts.Path, password)
		if err != nil {
			return err
		}
		m.password = password
		m.workPath = workPath
		path = workPath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		m.cleanupWorkFile()
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One interactive command at a time; a single connection avoids SQLite
	// write lock contention between statements.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		m.cleanupWorkFile()
		return fmt.Errorf("database connection failed: %w", err)
	}

	m.DB = db
	return nil
}

// Close closes the database connection. For encrypted databases the working
// copy is re-encrypted back to the original path and removed. Close is
// idempotent.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}

	var errs []error
	if err := m.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	m.DB = nil

	if m.workPath != "" {
		data, err := os.ReadFile(m.workPath)
		if err != nil {
			errs = append(errs, fmt.Errorf("read working copy: %w", err))
		} else {
			encrypted, err := crypto.Encrypt(data, m.password)
			if err != nil {
				errs = append(errs, fmt.Errorf("re-encrypt: %w", err))
			} else if err := os.WriteFile(m.opts.Path, encrypted, 0o600); err != nil {
				errs = append(errs, fmt.Errorf("write encrypted file: %w", err))
			}
		}
		m.cleanupWorkFile()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing database: %v", errs)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return errors.New("database is not open")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Path returns the configured database file path.
func (m *Manager) Path() string {
	return m.opts.Path
}

func (m *Manager) cleanupWorkFile() {
	if m.workPath != "" {
		os.Remove(m.workPath)
		m.workPath = ""
		m.password = ""
	}
}
