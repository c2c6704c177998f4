package config

import "fmt"

// DatabaseConfig holds the local SQLite store configuration
type DatabaseConfig struct {
	// Path to the SQLite database file. ":memory:" is accepted for tests.
	Path string `yaml:"path"`

	// BusyTimeoutMS is passed to SQLite as busy_timeout
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
}

// DSN returns the SQLite connection string with WAL enabled.
// A single-operator tool has one writer, but WAL keeps readers from
// blocking during sync bulk loads.
func (c *DatabaseConfig) DSN() string {
	path := c.Path
	if path == "" {
		path = "./data/flmanager.db"
	}
	busy := c.BusyTimeoutMS
	if busy <= 0 {
		busy = 5000
	}
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busy)
}
