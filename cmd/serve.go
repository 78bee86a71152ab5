package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sidenav/internal/db"
	"github.com/ziadkadry99/sidenav/internal/server"
	"github.com/ziadkadry99/sidenav/internal/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the preview server",
	Long: `Serves the built site and renders the sidebar into every page on request.
Each browser session keeps its own scroll slot, so following a sidebar link
restores the sidebar's position on the next page.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "override server.port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetInt("port"); p > 0 {
		cfg.Server.Port = p
	}
	if _, err := os.Stat(cfg.SiteDir); err != nil {
		return fmt.Errorf("site directory %s: %w\nBuild the book first", cfg.SiteDir, err)
	}

	markup, err := loadMarkup(cfg)
	if err != nil {
		return err
	}
	ttl, err := cfg.SessionTTL()
	if err != nil {
		return err
	}

	// Open database.
	var database *db.DB
	dbPath := cfg.Server.SessionDB
	if dbPath == "" {
		dbPath = ":memory:"
		database, err = db.OpenMemory()
	} else {
		database, err = db.Open(dbPath)
	}
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	base := &url.URL{Scheme: "http", Host: fmt.Sprintf("localhost:%d", cfg.Server.Port), Path: "/"}
	renderer := site.NewRenderer(cfg, markup, base, newLogger())

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		SiteDir:         cfg.SiteDir,
		AllowAll:        cfg.Server.AllowAllOrigins,
		Include:         cfg.Include,
		Exclude:         cfg.Exclude,
		MountSelector:   cfg.MountSelector,
		StorageKey:      cfg.StorageKey,
		DefaultDocument: cfg.DefaultDocument,
		SessionTTL:      ttl,
	}, database, renderer)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		srv.Shutdown(context.Background())
	}()

	fmt.Fprintf(os.Stderr, "sidenav %s preview on http://localhost:%d/\n", Version, cfg.Server.Port)
	fmt.Fprintf(os.Stderr, "  Site: %s\n", cfg.SiteDir)
	fmt.Fprintf(os.Stderr, "  TOC: %s\n", cfg.TOC)
	fmt.Fprintf(os.Stderr, "  Sessions: %s\n", dbPath)

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
