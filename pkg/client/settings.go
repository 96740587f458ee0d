package client

import (
	"database/sql"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Settings persists the last-selected workspace across sessions
type Settings interface {
	LastWorkspace() string
	SetLastWorkspace(id string)
}

// MemorySettings is an in-memory Settings implementation
type MemorySettings struct {
	mu   sync.Mutex
	last string
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{}
}

func (s *MemorySettings) LastWorkspace() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *MemorySettings) SetLastWorkspace(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = id
}

const lastWorkspaceKey = "last_workspace"

// SQLiteSettings stores settings in a local SQLite file, one key/value row
// per setting. Write failures are logged, not surfaced; selection
// persistence is best effort.
type SQLiteSettings struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteSettings opens (creating if needed) the settings database at path
func NewSQLiteSettings(path string, log zerolog.Logger) (*SQLiteSettings, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteSettings{db: db, log: log}, nil
}

func (s *SQLiteSettings) LastWorkspace() string {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, lastWorkspaceKey).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Debug().Err(err).Msg("Failed to read last workspace")
		}
		return ""
	}
	return value
}

func (s *SQLiteSettings) SetLastWorkspace(id string) {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		lastWorkspaceKey, id,
	)
	if err != nil {
		s.log.Debug().Err(err).Msg("Failed to persist last workspace")
	}
}

// Close closes the underlying database
func (s *SQLiteSettings) Close() error {
	return s.db.Close()
}
