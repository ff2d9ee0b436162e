package db

import (
	"fmt"
	"net/url"
	"strings"
)

// WithDBName returns a DSN identical to the input but with the database path replaced.
// Supports postgres:// and postgresql:// schemes. SQLite file DSNs are
// rejected.
func WithDBName(dsn, database string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("empty DSN")
	}
	if strings.TrimSpace(database) == "" {
		return "", fmt.Errorf("empty database name")
	}
	if Driver(dsn) != "pgx" && looksLikeFile(dsn) {
		return "", fmt.Errorf("database name applies to postgres DSNs only, got %q", dsn)
	}
	// allow missing scheme by prefixing postgres://
	if !strings.Contains(dsn, "://") {
		dsn = "postgres://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported DSN scheme %q", u.Scheme)
	}
	u.Path = "/" + strings.TrimPrefix(database, "/")
	return u.String(), nil
}

// looksLikeFile reports DSNs that the sqlite driver would open as a file.
func looksLikeFile(dsn string) bool {
	return dsn == ":memory:" ||
		strings.HasPrefix(dsn, "file:") ||
		strings.HasPrefix(dsn, "/") ||
		strings.HasPrefix(dsn, ".") ||
		strings.HasSuffix(dsn, ".db") ||
		strings.HasSuffix(dsn, ".sqlite")
}
