package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/ziadkadry99/sidenav/internal/dom/htmldom"
	"github.com/ziadkadry99/sidenav/internal/progress"
	"github.com/ziadkadry99/sidenav/internal/sidebar"
)

// Prerenderer writes the sidebar into every page of a built site.
type Prerenderer struct {
	Renderer *Renderer
	SiteDir  string
	Include  []string
	Exclude  []string
	Reporter progress.Reporter
	Logger   *log.Logger
}

// Result summarizes a prerender run.
type Result struct {
	Pages   int      `json:"pages"`
	Skipped []string `json:"skipped,omitempty"`
}

// Pages lists the slash-separated paths of every page under SiteDir that
// passes the include and exclude patterns, sorted.
func (p *Prerenderer) Pages() ([]string, error) {
	var pages []string
	err := filepath.WalkDir(p.SiteDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(p.SiteDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if Match(rel, p.Include, p.Exclude) {
			pages = append(pages, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", p.SiteDir, err)
	}
	sort.Strings(pages)
	return pages, nil
}

// Run rewrites every page in place. Pages without a mount point are left
// untouched and listed in Result.Skipped.
func (p *Prerenderer) Run(ctx context.Context) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	reporter := p.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}

	pages, err := p.Pages()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	reporter.Start(len(pages))
	defer reporter.Finish()

	for i, rel := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		reporter.Update(i+1, rel)

		done, err := p.renderFile(rel)
		if err != nil {
			return res, err
		}
		if !done {
			logger.Printf("prerender: %s has no mount point, skipped", rel)
			res.Skipped = append(res.Skipped, rel)
			continue
		}
		res.Pages++
	}
	return res, nil
}

func (p *Prerenderer) renderFile(rel string) (bool, error) {
	path := filepath.Join(p.SiteDir, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", rel, err)
	}

	// Each page starts from an empty slot so the active entry is centered.
	page, err := p.Renderer.RenderPage(bytes.NewReader(data), rel, sidebar.NewMemStorage())
	if errors.Is(err, htmldom.ErrNoMount) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := page.InjectScript(p.Renderer.Script("")); err != nil {
		return false, err
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return false, fmt.Errorf("rendering %s: %w", rel, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", rel, err)
	}
	return true, nil
}
