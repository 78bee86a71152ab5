package cmd

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/sidenav/internal/config"
	"github.com/ziadkadry99/sidenav/internal/toc"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `sidenav init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w\nFix %s or run `sidenav init`", err, cfgFile)
	}
	return cfg, nil
}

// loadMarkup reads the TOC markup named by the config.
func loadMarkup(cfg *config.Config) (string, error) {
	markup, err := toc.LoadMarkup(cfg.TOC)
	if err != nil {
		return "", fmt.Errorf("loading toc: %w", err)
	}
	return markup, nil
}

// siteBase returns the file URL of the site directory, ending in a slash.
func siteBase(dir string) (*url.URL, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	p := filepath.ToSlash(abs)
	if p[len(p)-1] != '/' {
		p += "/"
	}
	if p[0] != '/' {
		// Windows drive paths.
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

// newLogger returns a logger that only writes with --verbose.
func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "sidenav: ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}
