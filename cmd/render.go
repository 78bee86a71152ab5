package cmd

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sidenav/internal/config"
	"github.com/ziadkadry99/sidenav/internal/dom/htmldom"
	"github.com/ziadkadry99/sidenav/internal/nav"
	"github.com/ziadkadry99/sidenav/internal/sidebar"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the sidebar as it renders on one page",
	Long: `Renders the table of contents as the sidebar of the given page and prints
the resulting markup: links rewritten for the page, the current page marked
active and its sections expanded. With --scroll the page is treated as if
the previous page had stored that offset.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("page", "", "page path relative to the site root (defaults to the default document)")
	renderCmd.Flags().String("scroll", "", "stored scroll offset to restore")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	markup, err := loadMarkup(cfg)
	if err != nil {
		return err
	}

	page, _ := cmd.Flags().GetString("page")
	var slot *string
	if cmd.Flags().Changed("scroll") {
		v, _ := cmd.Flags().GetString("scroll")
		slot = &v
	}

	m, h, err := attachPage(cfg, markup, page, slot)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), m.InnerHTML())

	errOut := cmd.ErrOrStderr()
	if active := h.Active(); active != nil {
		href, _ := active.Attr("href")
		fmt.Fprintf(errOut, "active: %s\n", href)
	} else {
		fmt.Fprintln(errOut, "active: none")
	}
	if top, ok := m.Restored(); ok {
		fmt.Fprintf(errOut, "scroll: restored %d\n", top)
	} else if m.Centered() != nil {
		fmt.Fprintf(errOut, "scroll: centered at %d\n", m.ScrollTop())
	}
	return nil
}

// attachPage renders the sidebar for page into a detached mount. A non-nil
// slot is placed in storage first.
func attachPage(cfg *config.Config, markup, page string, slot *string) (*htmldom.Mount, *sidebar.Handle, error) {
	page = strings.TrimPrefix(path.Clean("/"+page), "/")
	if page == "" {
		page = cfg.DefaultDocument
	}

	base, err := siteBase(cfg.SiteDir)
	if err != nil {
		return nil, nil, err
	}

	doc, err := htmldom.ParseString(`<nav id="sidenav"></nav>`)
	if err != nil {
		return nil, nil, err
	}
	m, err := doc.Mount("#sidenav")
	if err != nil {
		return nil, nil, err
	}
	m.RowHeight = cfg.Layout.RowHeight
	m.ViewportHeight = cfg.Layout.ViewportHeight

	store := sidebar.NewMemStorage()
	if slot != nil {
		if err := store.Set(cfg.StorageKey, *slot); err != nil {
			return nil, nil, err
		}
	}

	loc := base.ResolveReference(&url.URL{Path: page})
	sc := cfg.Sidebar(markup, nav.RootPrefix(page), loc, store)
	sc.Logger = newLogger()
	h, err := sidebar.Attach(m, sc)
	if err != nil {
		return nil, nil, fmt.Errorf("attaching sidebar: %w", err)
	}
	h.Detach()
	return m, h, nil
}
