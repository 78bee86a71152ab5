package config

// Config is the top-level sidenav configuration, corresponding to .sidenav.yml.
type Config struct {
	TOC             string       `yaml:"toc" koanf:"toc"`
	SiteDir         string       `yaml:"site_dir" koanf:"site_dir"`
	MountSelector   string       `yaml:"mount_selector" koanf:"mount_selector"`
	ToggleSelector  string       `yaml:"toggle_selector" koanf:"toggle_selector"`
	StorageKey      string       `yaml:"storage_key" koanf:"storage_key"`
	DefaultDocument string       `yaml:"default_document" koanf:"default_document"`
	Include         []string     `yaml:"include" koanf:"include"`
	Exclude         []string     `yaml:"exclude" koanf:"exclude"`
	Layout          LayoutConfig `yaml:"layout" koanf:"layout"`
	Server          ServerConfig `yaml:"server" koanf:"server"`
}

// LayoutConfig describes sidebar geometry for server-side scroll centering.
// A zero viewport leaves centering to the browser.
type LayoutConfig struct {
	RowHeight      int `yaml:"row_height" koanf:"row_height"`
	ViewportHeight int `yaml:"viewport_height" koanf:"viewport_height"`
}

// ServerConfig holds preview server settings.
type ServerConfig struct {
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	SessionDB       string `yaml:"session_db" koanf:"session_db"`
	SessionTTL      string `yaml:"session_ttl" koanf:"session_ttl"`
}
