// Package config loads config.toml, .env and RRV_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Source kinds
const (
	SourceXLSX    = "xlsx"
	SourceGSheets = "gsheets"
)

// AppConfig application config
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Source     SourceConfig     `toml:"source"`
	Registry   RegistryConfig   `toml:"registry"`
	Classifier ClassifierConfig `toml:"classifier"`
	Export     ExportConfig     `toml:"export"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig HTTP server
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// SourceConfig where the spreadsheets come from
type SourceConfig struct {
	Kind            string `toml:"kind"`
	Dir             string `toml:"dir"`
	CredentialsFile string `toml:"credentials_file"`
	Marker          string `toml:"marker"`
}

// RegistryConfig external plate registry
type RegistryConfig struct {
	Enabled    bool     `toml:"enabled"`
	BaseURL    string   `toml:"base_url"`
	PlateParam string   `toml:"plate_param"`
	APIKey     string   `toml:"api_key"`
	AuthHeader string   `toml:"auth_header"`
	AuthScheme string   `toml:"auth_scheme"`
	Timeout    Duration `toml:"timeout"`
}

// ClassifierConfig extra header synonyms, keyed by role name
type ClassifierConfig struct {
	Keywords map[string][]string `toml:"keywords"`
}

// ExportConfig workbook export
type ExportConfig struct {
	DownloadTTL Duration `toml:"download_ttl"`
}

// LogConfig logger
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Duration a time.Duration written as "10s" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfigInfo load metadata
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
	EnvFile       bool
}

// DefaultConfig defaults
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			OpenBrowser: false,
		},
		Source: SourceConfig{
			Kind:   SourceXLSX,
			Dir:    filepath.Join("data", "sheets"),
			Marker: "RRV",
		},
		Registry: RegistryConfig{
			PlateParam: "placa",
			AuthHeader: "Authorization",
			AuthScheme: "Bearer",
			Timeout:    Duration{10 * time.Second},
		},
		Export: ExportConfig{
			DownloadTTL: Duration{10 * time.Minute},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir directory of the running executable
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath config.toml beside the executable
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo loads path (DefaultPath when empty) over the defaults, then .env
// from the working directory, then RRV_* overrides. A missing file means defaults.
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, info, err
	}

	// .env is optional; variables already set in the environment win
	if err := godotenv.Load(); err == nil {
		info.EnvFile = true
	}

	if err := applyEnv(config, os.LookupEnv); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig loads the config from path, see LoadConfigWithInfo.
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// SaveConfig writes config to path.
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func applyEnv(config *AppConfig, lookup func(string) (string, bool)) error {
	if v, ok := lookup("RRV_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RRV_PORT: %w", err)
		}
		config.Server.Port = port
	}
	if v, ok := lookup("RRV_SOURCE_KIND"); ok && v != "" {
		config.Source.Kind = v
	}
	if v, ok := lookup("RRV_SOURCE_DIR"); ok && v != "" {
		config.Source.Dir = v
	}
	if v, ok := lookup("RRV_CREDENTIALS_FILE"); ok && v != "" {
		config.Source.CredentialsFile = v
	}
	if v, ok := lookup("RRV_MARKER"); ok && v != "" {
		config.Source.Marker = v
	}
	if v, ok := lookup("RRV_REGISTRY_URL"); ok && v != "" {
		config.Registry.BaseURL = v
		config.Registry.Enabled = true
	}
	if v, ok := lookup("RRV_REGISTRY_API_KEY"); ok && v != "" {
		config.Registry.APIKey = v
	}
	if v, ok := lookup("RRV_REGISTRY_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RRV_REGISTRY_TIMEOUT: %w", err)
		}
		config.Registry.Timeout = Duration{d}
	}
	return nil
}

// Validate rejects configs the service cannot start with.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch c.Source.Kind {
	case SourceXLSX:
		if c.Source.Dir == "" {
			errs = append(errs, errors.New("source.dir is required for xlsx sources"))
		}
	case SourceGSheets:
	default:
		errs = append(errs, fmt.Errorf("unknown source.kind %q", c.Source.Kind))
	}
	if strings.TrimSpace(c.Source.Marker) == "" {
		errs = append(errs, errors.New("source.marker must not be empty"))
	}
	if c.Registry.Enabled && c.Registry.BaseURL == "" {
		errs = append(errs, errors.New("registry.base_url is required when the registry is enabled"))
	}
	if c.Registry.Timeout.Duration < 0 {
		errs = append(errs, errors.New("registry.timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// ResolveCredentialsFile returns the configured service-account file or, when none is
// set, the first *.json file in dir (alphabetically).
func (c *AppConfig) ResolveCredentialsFile(dir string) (string, error) {
	if c.Source.CredentialsFile != "" {
		return c.Source.CredentialsFile, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no credentials file configured and no *.json found in %s", dir)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// EnsureSourceDir creates the xlsx directory if needed and returns its path.
func EnsureSourceDir(config *AppConfig) (string, error) {
	if err := os.MkdirAll(config.Source.Dir, 0755); err != nil {
		return "", err
	}
	return config.Source.Dir, nil
}
