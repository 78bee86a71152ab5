package sidebar

import (
	"math"
	"strconv"
	"strings"

	"github.com/ziadkadry99/sidenav/internal/dom"
)

// restoreScroll applies a scroll offset saved by the previous page, or
// centers the active node when there is none.
func (h *Handle) restoreScroll() {
	if offset, ok := h.takeScrollOffset(); ok {
		h.mount.SetScrollTop(offset)
		return
	}
	if h.active != nil {
		h.mount.CenterOn(h.active)
	}
}

// takeScrollOffset reads and clears the one-shot slot. Storage failures
// count as an empty slot.
func (h *Handle) takeScrollOffset() (int, bool) {
	store := h.cfg.Storage
	if store == nil {
		return 0, false
	}
	raw, ok, err := store.Get(h.cfg.StorageKey)
	if err != nil {
		h.cfg.Logger.Printf("sidebar: reading %s: %v", h.cfg.StorageKey, err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	if err := store.Delete(h.cfg.StorageKey); err != nil {
		h.cfg.Logger.Printf("sidebar: clearing %s: %v", h.cfg.StorageKey, err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		h.cfg.Logger.Printf("sidebar: ignoring stored offset %q", raw)
		return 0, false
	}
	return int(math.Round(v)), true
}

// captureScroll saves the mount's offset whenever a link inside it is
// clicked, so the next page can restore it.
func (h *Handle) captureScroll() {
	store := h.cfg.Storage
	if store == nil {
		return
	}
	h.listen(h.mount, "click", func(ev dom.Event) {
		if h.enclosingLink(ev.Target) == nil {
			return
		}
		if err := store.Set(h.cfg.StorageKey, strconv.Itoa(h.mount.ScrollTop())); err != nil {
			h.cfg.Logger.Printf("sidebar: saving %s: %v", h.cfg.StorageKey, err)
		}
	})
}

// enclosingLink returns the anchor that el is or sits inside, stopping at
// the mount.
func (h *Handle) enclosingLink(el dom.Element) dom.Element {
	for e := el; e != nil && !dom.Same(e, h.mount); e = e.Parent() {
		if e.TagName() == "A" {
			return e
		}
	}
	return nil
}
