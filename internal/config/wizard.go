package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// bookLayouts maps marker files to the toc and site directory of a
// generated book.
var bookLayouts = []struct {
	Marker  string
	Name    string
	TOC     string
	SiteDir string
}{
	{Marker: "book/toc.js", Name: "mdBook output", TOC: "book/toc.js", SiteDir: "book"},
	{Marker: "book.toml", Name: "mdBook source", TOC: "book/toc.js", SiteDir: "book"},
	{Marker: "site/toc.html", Name: "static site", TOC: "site/toc.html", SiteDir: "site"},
	{Marker: "toc.html", Name: "static site", TOC: "toc.html", SiteDir: "."},
}

// detectLayout checks the current directory for a known book layout.
func detectLayout() (name, toc, siteDir string) {
	for _, l := range bookLayouts {
		if _, err := os.Stat(filepath.FromSlash(l.Marker)); err == nil {
			return l.Name, l.TOC, l.SiteDir
		}
	}
	d := DefaultConfig()
	return "", d.TOC, d.SiteDir
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .sidenav.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to sidenav! Let's configure your book.")
	fmt.Println()

	layout, defaultTOC, defaultSite := detectLayout()
	if layout != "" {
		fmt.Printf("Detected layout: %s\n\n", layout)
	}

	// 1. TOC source.
	tocPrompt := promptui.Prompt{
		Label:   "TOC markup (toc.js or an HTML fragment)",
		Default: defaultTOC,
	}
	tocPath, err := tocPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("toc path: %w", err)
	}

	// 2. Site directory.
	sitePrompt := promptui.Prompt{
		Label:   "Directory holding the rendered pages",
		Default: defaultSite,
	}
	siteDir, err := sitePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site dir: %w", err)
	}

	// 3. Mount.
	mountPrompt := promptui.Select{
		Label: "Sidebar mount",
		Items: []string{
			"mdbook-sidebar-scrollbox  (mdBook 0.4.40+)",
			"#sidebar .sidebar-scrollbox  (older mdBook themes)",
			"custom",
		},
	}
	mountIdx, _, err := mountPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("mount selection: %w", err)
	}
	mount := []string{"mdbook-sidebar-scrollbox", "#sidebar .sidebar-scrollbox"}
	var mountSelector string
	if mountIdx < len(mount) {
		mountSelector = mount[mountIdx]
	} else {
		customPrompt := promptui.Prompt{
			Label: "Mount selector",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("selector must not be empty")
				}
				return nil
			},
		}
		if mountSelector, err = customPrompt.Run(); err != nil {
			return nil, fmt.Errorf("mount selector: %w", err)
		}
	}

	// 4. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}

	// 5. Preview port.
	portPrompt := promptui.Prompt{
		Label:   "Preview server port",
		Default: strconv.Itoa(DefaultConfig().Server.Port),
		Validate: func(s string) error {
			p, err := strconv.Atoi(s)
			if err != nil || p < 1 || p > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := DefaultConfig()
	cfg.TOC = tocPath
	cfg.SiteDir = siteDir
	cfg.MountSelector = strings.TrimSpace(mountSelector)
	cfg.Exclude = append(cfg.Exclude, splitAndTrim(excludeStr)...)
	cfg.Server.Port = port

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(tocPath); err != nil {
		fmt.Printf("\nNote: %s does not exist yet. Build the book before running sidenav prerender.\n", tocPath)
	}

	configPath := DefaultConfigFile
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
