package config

// Config is the on-disk configuration (JSON or YAML).
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Datadog DatadogConfig `json:"datadog"`
	Events  EventsConfig  `json:"events"`
}

type LoggingConfig struct {
	Level   string            `json:"level"`
	Console bool              `json:"console"`
	File    LoggingFileConfig `json:"file"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// DatadogConfig holds API credentials and transport settings.
//
// Blank api_key/app_key/site fall back to DD_API_KEY/DD_APP_KEY/DD_SITE.
type DatadogConfig struct {
	APIKey string `json:"api_key,omitempty"`
	AppKey string `json:"app_key,omitempty"`
	Site   string `json:"site,omitempty"`

	// Timeout is a Go duration string (e.g. "10s"). Empty means 10s.
	Timeout string `json:"timeout,omitempty"`

	// Endpoint overrides the site-derived API URL.
	Endpoint string `json:"endpoint,omitempty"`
}

// EventsConfig selects which records become Datadog events.
//
// An omitted tags key means no tags field on events; an explicit empty
// list sends an empty one. Empty mentions behave like omitted ones.
type EventsConfig struct {
	// Logger is the dotted logger name the handler attaches to ("" = root).
	Logger string `json:"logger,omitempty"`

	// MinLevel defaults to "error".
	MinLevel string `json:"min_level,omitempty"`

	Tags     []string `json:"tags"`
	Mentions []string `json:"mentions,omitempty"`

	// RatePerSec caps outbound events. 0 disables the limit.
	RatePerSec int `json:"rate_per_sec,omitempty"`
}
