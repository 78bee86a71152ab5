package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sidenav/internal/progress"
	"github.com/ziadkadry99/sidenav/internal/site"
)

var prerenderCmd = &cobra.Command{
	Use:   "prerender",
	Short: "Write the sidebar into every page of a built site",
	Long: `Walks the site directory and, for every page matched by include and
exclude, renders the sidebar into the page's mount point and writes the page
back in place. Pages without a mount point are left untouched.`,
	RunE: runPrerender,
}

func init() {
	prerenderCmd.Flags().String("site", "", "override site_dir")
	prerenderCmd.Flags().Bool("list", false, "only list the pages that would be rendered")
	prerenderCmd.Flags().Bool("json", false, "print the result as JSON")
	rootCmd.AddCommand(prerenderCmd)
}

func runPrerender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("site"); dir != "" {
		cfg.SiteDir = dir
	}
	if _, err := os.Stat(cfg.SiteDir); os.IsNotExist(err) {
		return fmt.Errorf("site directory not found at %s\nBuild the book first", cfg.SiteDir)
	}

	markup, err := loadMarkup(cfg)
	if err != nil {
		return err
	}
	base, err := siteBase(cfg.SiteDir)
	if err != nil {
		return err
	}

	logger := newLogger()
	p := &site.Prerenderer{
		Renderer: site.NewRenderer(cfg, markup, base, logger),
		SiteDir:  cfg.SiteDir,
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
		Reporter: progress.NewReporter("Prerendering pages"),
		Logger:   logger,
	}

	out := cmd.OutOrStdout()
	if list, _ := cmd.Flags().GetBool("list"); list {
		pages, err := p.Pages()
		if err != nil {
			return err
		}
		for _, page := range pages {
			fmt.Fprintln(out, page)
		}
		return nil
	}

	res, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("prerendering: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(out).Encode(res)
	}
	fmt.Fprintf(out, "Rendered the sidebar into %d pages in %s\n", res.Pages, cfg.SiteDir)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped %d pages without a %s element (-v lists them)\n", len(res.Skipped), cfg.MountSelector)
	}
	return nil
}
