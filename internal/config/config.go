package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/sidenav/internal/sidebar"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SIDENAV_*). A double underscore selects a
// nested key: SIDENAV_SERVER__PORT sets server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults. Lists are left empty so a shorter list in the
	// file replaces the default rather than overwriting its head.
	cfg := DefaultConfig()
	defaults := DefaultConfig()
	cfg.Include, cfg.Exclude = nil, nil

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("SIDENAV_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "SIDENAV_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if !k.Exists("include") {
		cfg.Include = defaults.Include
	}
	if !k.Exists("exclude") {
		cfg.Exclude = defaults.Exclude
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.TOC == "" {
		return fmt.Errorf("%w: toc is required", ErrInvalid)
	}
	if c.MountSelector == "" {
		return fmt.Errorf("%w: mount_selector is required", ErrInvalid)
	}
	if c.DefaultDocument == "" || strings.ContainsAny(c.DefaultDocument, "/\\") {
		return fmt.Errorf("%w: default_document must be a bare file name, got %q", ErrInvalid, c.DefaultDocument)
	}
	for _, p := range append(append([]string{}, c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: bad glob %q", ErrInvalid, p)
		}
	}
	if c.Layout.RowHeight < 0 || c.Layout.ViewportHeight < 0 {
		return fmt.Errorf("%w: layout sizes must be non-negative", ErrInvalid)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalid, c.Server.Port)
	}
	if _, err := c.SessionTTL(); err != nil {
		return fmt.Errorf("%w: server.session_ttl: %v", ErrInvalid, err)
	}
	return nil
}

// SessionTTL parses server.session_ttl. Empty means sessions never expire
// on the server; the browser still drops the cookie when it closes.
func (c *Config) SessionTTL() (time.Duration, error) {
	if c.Server.SessionTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// Sidebar builds the controller configuration for one page.
func (c *Config) Sidebar(markup, rootPrefix string, location *url.URL, store sidebar.Storage) sidebar.Config {
	return sidebar.Config{
		Markup:          markup,
		RootPrefix:      rootPrefix,
		Location:        location,
		Storage:         store,
		StorageKey:      c.StorageKey,
		DefaultDocument: c.DefaultDocument,
		ToggleSelector:  c.ToggleSelector,
	}
}
