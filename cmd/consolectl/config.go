package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-admin-console/pkg/storage"
)

// fileConfig is the consolectl YAML document.
type fileConfig struct {
	Listen    string          `yaml:"listen"`
	BasePath  string          `yaml:"base_path"`
	Transport string          `yaml:"transport"`
	Interface string          `yaml:"interface"`
	Theme     string          `yaml:"theme"`
	PageSize  int             `yaml:"page_size"`
	Backend   backendConfig   `yaml:"backend"`
	Storage   storage.Config  `yaml:"storage"`
	Charts    chartsConfig    `yaml:"charts"`
	Activity  activity.Config `yaml:"activity"`
	Sessions  sessionsConfig  `yaml:"sessions"`
}

type sessionsConfig struct {
	Max     int    `yaml:"max"`
	IdleTTL string `yaml:"idle_ttl"`
}

type backendConfig struct {
	URL        string `yaml:"url"`
	CSRFCookie string `yaml:"csrf_cookie"`
	CSRFHeader string `yaml:"csrf_header"`
	CSRFToken  string `yaml:"csrf_token"`
}

type chartsConfig struct {
	Remote     bool            `yaml:"remote"`
	CacheTTL   string          `yaml:"cache_ttl"`
	AssetsHost string          `yaml:"assets_host"`
	Analytics  analyticsConfig `yaml:"analytics"`
}

// analyticsConfig points chart series at a BI service instead of the backend.
type analyticsConfig struct {
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	Segment string `yaml:"segment"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Listen:    ":8080",
		BasePath:  "/admin",
		Transport: "fiber",
		Interface: console.InterfaceModern,
		Storage:   storage.Config{Driver: "memory"},
		Charts:    chartsConfig{CacheTTL: "5m"},
		Sessions:  sessionsConfig{Max: 1000, IdleTTL: "30m"},
	}
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
// Unknown keys are rejected.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("consolectl: read config: %w", err)
	}
	if err := decodeConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("consolectl: parse config %s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *fileConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.validate()
}

func (c fileConfig) validate() error {
	switch c.Transport {
	case "fiber", "chi":
	default:
		return fmt.Errorf("transport must be fiber or chi, got %q", c.Transport)
	}
	if _, ok := console.InterfacePaths[c.Interface]; !ok {
		return fmt.Errorf("unknown interface %q", c.Interface)
	}
	if c.Sessions.Max < 0 {
		return fmt.Errorf("sessions.max must not be negative")
	}
	if c.PageSize < 0 || c.PageSize > console.MaxPageSize {
		return fmt.Errorf("page_size must be between 0 and %d", console.MaxPageSize)
	}
	return nil
}
