package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`

	// JWTSecret signs the short-lived unlock tokens issued after a
	// successful PIN check.
	JWTSecret string `yaml:"jwt_secret"`

	// UnlockTokenTTL bounds how long an unlock token stays valid.
	UnlockTokenTTL time.Duration `yaml:"unlock_token_ttl"`

	Sync SyncConfig `yaml:"sync"`
}

// SyncConfig tunes the cloud synchronization engine. The remote endpoint
// and key live in the settings row, not here: they are operator data.
type SyncConfig struct {
	ChunkSize      int           `yaml:"chunk_size"`
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}
