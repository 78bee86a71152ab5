package sidebar

import (
	"github.com/ziadkadry99/sidenav/internal/dom"
)

// Handle is an attached sidebar.
type Handle struct {
	mount    Mount
	cfg      Config
	active   dom.Element
	removers []func()
}

// Attach renders cfg.Markup into mount and brings it to life. The steps run
// in a fixed order: materialize the tree, rewrite links and mark the active
// path in one walk, restore the scroll offset, then bind click handlers.
func Attach(mount Mount, cfg Config) (*Handle, error) {
	if mount == nil {
		return nil, ErrNoMount
	}
	if cfg.Location == nil {
		return nil, ErrNoLocation
	}
	cfg = cfg.withDefaults()

	if err := mount.SetInnerHTML(cfg.Markup); err != nil {
		return nil, err
	}

	h := &Handle{mount: mount, cfg: cfg}
	h.active = h.markActivePath()
	h.restoreScroll()
	h.captureScroll()
	h.bindToggles()
	return h, nil
}

// Active returns the element marked as the current page, or nil.
func (h *Handle) Active() dom.Element { return h.active }

// Mount returns the mount point the sidebar was attached to.
func (h *Handle) Mount() Mount { return h.mount }

// Detach removes every listener registered by Attach. The rendered tree is
// left in place. Calling Detach more than once is a no-op.
func (h *Handle) Detach() {
	for _, remove := range h.removers {
		remove()
	}
	h.removers = nil
}

func (h *Handle) listen(el dom.Element, eventType string, fn dom.Listener) {
	h.removers = append(h.removers, el.AddEventListener(eventType, fn))
}
