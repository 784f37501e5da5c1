package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultMetadataCommandTimeout bounds each git/docker/nvidia-smi call
	DefaultMetadataCommandTimeout = 5 * time.Second
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
)

// Memory constants
const (
	// DefaultStorageSize is the upper bound of persisted memory records
	DefaultStorageSize = 2000
	// DefaultMemoryResults is how many similar records feed a prompt
	DefaultMemoryResults = 5
	// DefaultEmbeddingDimensions is the width of the local hashing embedder
	DefaultEmbeddingDimensions = 256
	// DefaultEmbeddingCacheEntries is the maximum number of cached vectors
	DefaultEmbeddingCacheEntries = 500
)

// History constants
const (
	// DefaultHistoryLimit is the number of shell history entries sent to the model
	DefaultHistoryLimit = 40
	// DefaultHistoryDisplayLimit is used by `termind history` when --limit is absent
	DefaultHistoryDisplayLimit = 20
	// HistoryDateLayout renders event timestamps
	HistoryDateLayout = "2006-01-02 15:04:05"
)

// Generation constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 1024
	// DefaultTemperature is used when a provider omits one
	DefaultTemperature = 0.2
	// MaxGenerateAttempts bounds retries when the model returns nothing usable
	MaxGenerateAttempts = 3
)

// Metadata toggle values
const (
	ToggleAuto   = "auto"
	ToggleAlways = "always"
	ToggleNever  = "never"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
