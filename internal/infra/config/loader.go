package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/mirrordesk/mirrordesk/internal/app/config"
)

// RawSettings is the settings.yaml shape. Pointer fields distinguish
// "absent" from zero values so file, environment, and defaults layer
// cleanly.
type RawSettings struct {
	ServerBaseURL  *string `yaml:"server_base_url"`
	RequestTimeout *string `yaml:"request_timeout"`
	StageFile      *string `yaml:"stage_file"`
	PageSize       *int    `yaml:"page_size"`
	UseMemory      *bool   `yaml:"use_memory"`
}

// LoadSettings builds the configuration with priority
// settings.yaml > ENV > defaults.
func LoadSettings(fs afero.Fs, baseDir string) (*config.AppConfig, error) {
	def := config.Default()

	serverBaseURL := def.ServerBaseURL()
	requestTimeout := def.RequestTimeout()
	stageFile := def.StageFile()
	pageSize := def.PageSize()
	useMemory := def.UseMemory()
	source := "default"

	if v := os.Getenv("MIRRORDESK_SERVER_URL"); v != "" {
		serverBaseURL = v
		source = "env"
	}
	if v := os.Getenv("MIRRORDESK_TIMEOUT"); v != "" {
		requestTimeout = parseTimeout(v, requestTimeout)
		source = "env"
	}
	if v := os.Getenv("MIRRORDESK_STAGE_FILE"); v != "" {
		stageFile = v
		source = "env"
	}
	if v := os.Getenv("MIRRORDESK_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
			source = "env"
		}
	}
	if v := os.Getenv("MIRRORDESK_USE_MEMORY"); v != "" {
		useMemory = v == "1" || v == "true"
		source = "env"
	}

	settingPath := ""
	yamlPath := filepath.Join(baseDir, "settings.yaml")
	if data, err := afero.ReadFile(fs, yamlPath); err == nil {
		var raw RawSettings
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
		if raw.ServerBaseURL != nil {
			serverBaseURL = *raw.ServerBaseURL
		}
		if raw.RequestTimeout != nil {
			requestTimeout = parseTimeout(*raw.RequestTimeout, requestTimeout)
		}
		if raw.StageFile != nil {
			stageFile = *raw.StageFile
		}
		if raw.PageSize != nil && *raw.PageSize > 0 {
			pageSize = *raw.PageSize
		}
		if raw.UseMemory != nil {
			useMemory = *raw.UseMemory
		}
		source = "yaml"
		settingPath = yamlPath
	}

	return config.NewAppConfig(
		serverBaseURL, requestTimeout, stageFile, pageSize, useMemory,
		source, settingPath,
	), nil
}

// parseTimeout accepts a duration string ("45s") or a bare number of
// seconds.
func parseTimeout(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
