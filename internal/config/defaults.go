package config

import (
	"github.com/ziadkadry99/sidenav/internal/nav"
	"github.com/ziadkadry99/sidenav/internal/sidebar"
)

// DefaultConfigFile is read when --config is not given.
const DefaultConfigFile = ".sidenav.yml"

// DefaultExcludes are pages that never carry the sidebar.
var DefaultExcludes = []string{
	"404.html",
	"print.html",
	"toc.html",
	"**/_*/**",
}

// DefaultConfig returns a Config matching mdBook's output layout.
func DefaultConfig() *Config {
	return &Config{
		TOC:             "book/toc.js",
		SiteDir:         "book",
		MountSelector:   "mdbook-sidebar-scrollbox",
		ToggleSelector:  sidebar.DefaultToggleSelector,
		StorageKey:      sidebar.DefaultStorageKey,
		DefaultDocument: nav.DefaultDocument,
		Include:         []string{"**/*.html"},
		Exclude:         append([]string(nil), DefaultExcludes...),
		Layout: LayoutConfig{
			RowHeight:      28,
			ViewportHeight: 0,
		},
		Server: ServerConfig{
			Port:       3000,
			SessionTTL: "12h",
		},
	}
}
