package sqlstore

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// Schema returns the statements that create the tables if missing
	Schema() []string

	// LockClause is appended to SELECTs that read a row about to be rewritten
	LockClause() string

	// IsUniqueViolation reports whether err is a primary key or unique conflict
	IsUniqueViolation(err error) bool

	// IsRetryable reports whether err is a transient lock or serialization failure
	IsRetryable(err error) bool
}

// DialectFor returns the dialect registered under name
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3", "":
		return NewSQLiteDialect(), nil
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", name)
	}
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// commonSchema is portable across all three dialects. Timestamps are stored
// as unix milliseconds so no driver needs time parsing options.
var commonSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		login VARCHAR(255) PRIMARY KEY,
		id VARCHAR(64) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS identity_claims (
		canonical_key VARCHAR(32) PRIMARY KEY,
		account_id VARCHAR(64) NOT NULL,
		display_name VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS play_markers (
		canonical_key VARCHAR(32) NOT NULL,
		day VARCHAR(10) NOT NULL,
		played_at BIGINT NOT NULL,
		PRIMARY KEY (canonical_key, day)
	)`,
}

const profilesTable = `CREATE TABLE IF NOT EXISTS profiles (
		canonical_key VARCHAR(32) PRIMARY KEY,
		display_name VARCHAR(255) NOT NULL,
		score BIGINT NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL,
		streak INTEGER NOT NULL DEFAULT 0,
		last_played_day VARCHAR(10) NOT NULL DEFAULT ''`
