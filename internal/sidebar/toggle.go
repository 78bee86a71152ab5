package sidebar

import "github.com/ziadkadry99/sidenav/internal/dom"

// bindToggles makes every toggle control flip the expanded state of the
// item that contains it. Nothing else in the tree changes.
func (h *Handle) bindToggles() {
	for _, toggle := range h.mount.QueryAll(h.cfg.ToggleSelector) {
		h.listen(toggle, "click", func(ev dom.Event) {
			if item := ev.CurrentTarget.Parent(); item != nil {
				item.ToggleClass(h.cfg.ExpandedClass)
			}
		})
	}
}
