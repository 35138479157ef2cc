// Package runtimeconfig aggregates the runtime settings a host application
// hands to the page builder: backend endpoints, storage bindings, upload
// limits, and logging behaviour.
package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSaveEndpointRequired   = errors.New("pagebuilder config: save endpoint is required")
	ErrUploadEndpointRequired = errors.New("pagebuilder config: upload endpoint is required")
	ErrStorageProviderUnknown = errors.New("pagebuilder config: storage provider is invalid")
	ErrStorageDSNRequired     = errors.New("pagebuilder config: storage dsn is required for bun storage")
	ErrMediaDirRequired       = errors.New("pagebuilder config: media directory is required")
	ErrUploadLimitInvalid     = errors.New("pagebuilder config: upload limit must be positive")
	ErrCacheTTLInvalid        = errors.New("pagebuilder config: cache ttl must be zero or positive")
	ErrLoggingProviderUnknown = errors.New("pagebuilder config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("pagebuilder config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("pagebuilder config: logging format is invalid")
)

// Config aggregates endpoint and adapter bindings for the page builder.
// Fields use simple types so host applications can populate them from any
// configuration source.
type Config struct {
	SaveEndpoint      string
	UploadEndpoint    string
	AuthenticityToken string
	CancelURL         string
	HTTP              HTTPConfig
	Storage           StorageConfig
	Cache             CacheConfig
	Upload            UploadConfig
	Logging           LoggingConfig
}

// HTTPConfig captures how the editor API mounts into the host mux.
type HTTPConfig struct {
	BasePath string
}

// StorageConfig selects the page persistence backend.
type StorageConfig struct {
	Provider       string
	DSN            string
	MediaDir       string
	MediaURLPrefix string
}

// CacheConfig captures read-cache behaviour for the bun repository.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// UploadConfig bounds incoming asset uploads.
type UploadConfig struct {
	MaxBytes int64
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a local deployment.
func DefaultConfig() Config {
	return Config{
		SaveEndpoint:   "/api/pages",
		UploadEndpoint: "/api/uploads",
		CancelURL:      "/pages/",
		HTTP: HTTPConfig{
			BasePath: "/api",
		},
		Storage: StorageConfig{
			Provider:       "memory",
			MediaDir:       "media/uploads",
			MediaURLPrefix: "/media/uploads",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Upload: UploadConfig{
			MaxBytes: 10 << 20,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.SaveEndpoint) == "" {
		return ErrSaveEndpointRequired
	}
	if strings.TrimSpace(cfg.UploadEndpoint) == "" {
		return ErrUploadEndpointRequired
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Storage.Provider))
	switch provider {
	case "memory":
	case "bun":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if strings.TrimSpace(cfg.Storage.MediaDir) == "" {
		return ErrMediaDirRequired
	}

	if cfg.Upload.MaxBytes <= 0 {
		return ErrUploadLimitInvalid
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	if provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)); provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
