package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	UniqueConstrain = 1555

	dirPerm          = 0o755
	busyTimeoutMs    = 5000
	journalSizeLimit = 6144000
)

var (
	ErrNotFound = errors.New("not found")
)

// NewSQLiteDB opens the sqlite database at dbPath, creating its folder when
// needed. Connections run in WAL mode with foreign keys enforced.
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	if !strings.HasPrefix(dbPath, ":memory:") && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), dirPerm); err != nil {
			return nil, fmt.Errorf("creating folder of %s: %w", dbPath, err)
		}
	}
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA journal_size_limit = %d;", journalSizeLimit)); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	return db, nil
}

// dsn appends the connection pragmas as go-sqlite3 DSN parameters
func dsn(dbPath string) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	q.Set("_busy_timeout", strconv.Itoa(busyTimeoutMs))
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + q.Encode()
}

// ReturnErrNotFound maps sql.ErrNoRows to ErrNotFound so callers don't depend on database/sql
func ReturnErrNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
