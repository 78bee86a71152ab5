package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sidenav/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sidenav",
	Short: "Navigation sidebar controller for mdBook-style sites",
	Long: `sidenav renders a book's table of contents into each page's sidebar,
marks the current page and expands its sections, rewrites links relative to
the page, and keeps the sidebar's scroll position across page loads.

It can prerender a built site in place or serve it through a preview server
that remembers each browser session's scroll position.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
