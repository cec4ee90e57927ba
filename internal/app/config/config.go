package config

import "time"

// Config provides read-only access to application configuration.
// The interface hides the source (settings.yaml, ENV, defaults) from
// everything above the infra layer.
type Config interface {
	ServerBaseURL() string         // Record service base URL (MIRRORDESK_SERVER_URL)
	RequestTimeout() time.Duration // Per-request timeout (MIRRORDESK_TIMEOUT)
	StageFile() string             // Pipeline stage definitions path (MIRRORDESK_STAGE_FILE)
	PageSize() int                 // Default list page size (MIRRORDESK_PAGE_SIZE)
	UseMemory() bool               // Run against the in-memory backend (MIRRORDESK_USE_MEMORY)

	ConfigSource() string // "yaml", "env", or "default"
	SettingPath() string  // Path to settings.yaml if loaded from file
}

// AppConfig is the immutable Config implementation the loader builds.
type AppConfig struct {
	serverBaseURL  string
	requestTimeout time.Duration
	stageFile      string
	pageSize       int
	useMemory      bool
	configSource   string
	settingPath    string
}

// NewAppConfig creates a configuration value.
func NewAppConfig(
	serverBaseURL string,
	requestTimeout time.Duration,
	stageFile string,
	pageSize int,
	useMemory bool,
	configSource string,
	settingPath string,
) *AppConfig {
	return &AppConfig{
		serverBaseURL:  serverBaseURL,
		requestTimeout: requestTimeout,
		stageFile:      stageFile,
		pageSize:       pageSize,
		useMemory:      useMemory,
		configSource:   configSource,
		settingPath:    settingPath,
	}
}

// Default returns the built-in configuration used when no settings
// file or environment overrides exist.
func Default() *AppConfig {
	return NewAppConfig("http://localhost:8080", 30*time.Second, "stages.yaml", 100, false, "default", "")
}

func (c *AppConfig) ServerBaseURL() string         { return c.serverBaseURL }
func (c *AppConfig) RequestTimeout() time.Duration { return c.requestTimeout }
func (c *AppConfig) StageFile() string             { return c.stageFile }
func (c *AppConfig) PageSize() int                 { return c.pageSize }
func (c *AppConfig) UseMemory() bool               { return c.useMemory }
func (c *AppConfig) ConfigSource() string          { return c.configSource }
func (c *AppConfig) SettingPath() string           { return c.settingPath }
