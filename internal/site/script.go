package site

import (
	"encoding/json"
	"fmt"

	"github.com/ziadkadry99/sidenav/internal/sidebar"
)

// ScriptSelector matches the script injected by InjectScript.
const ScriptSelector = "script[data-sidenav]"

// Script returns the browser side of a rendered page. It applies the scroll
// outcome recorded on the mount and binds the section toggles. When
// endpoint is set, the offset is posted there whenever a sidebar link is
// followed; otherwise it is kept in sessionStorage and restored once by the
// next page.
func (r *Renderer) Script(endpoint string) string {
	toggle := r.cfg.ToggleSelector
	if toggle == "" {
		toggle = sidebar.DefaultToggleSelector
	}
	key := r.cfg.StorageKey
	if key == "" {
		key = sidebar.DefaultStorageKey
	}
	return fmt.Sprintf(`<script data-sidenav>
(function () {
  var m = document.querySelector(%s);
  if (!m) return;
  var key = %s, endpoint = %s;
  var top = m.getAttribute(%s);
  if (!endpoint) {
    try {
      var saved = sessionStorage.getItem(key);
      sessionStorage.removeItem(key);
      if (saved !== null && saved.trim() !== "" && isFinite(Number(saved))) top = saved;
    } catch (e) {}
  }
  if (top !== null) {
    m.scrollTop = Math.round(Number(top));
  } else if (m.hasAttribute(%s)) {
    var a = m.querySelector("a.active");
    if (a) a.scrollIntoView({block: "center"});
  }
  m.querySelectorAll(%s).forEach(function (t) {
    t.addEventListener("click", function () { t.parentElement.classList.toggle("expanded"); });
  });
  m.addEventListener("click", function (e) {
    if (!e.target.closest || !e.target.closest("a")) return;
    if (!endpoint) {
      try { sessionStorage.setItem(key, String(m.scrollTop)); } catch (err) {}
      return;
    }
    fetch(endpoint, {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({offset: m.scrollTop}),
      credentials: "same-origin",
      keepalive: true
    });
  });
})();
</script>`, js(r.cfg.MountSelector), js(key), js(endpoint), js(AttrScrollTop), js(AttrScrollCenter), js(toggle))
}

// InjectScript appends the page script to the body, replacing one left by
// an earlier render.
func (p *Page) InjectScript(script string) error {
	p.Doc.RemoveAll(ScriptSelector)
	if err := p.Doc.AppendHTML("body", script); err != nil {
		return fmt.Errorf("%s: injecting script: %w", p.RelPath, err)
	}
	return nil
}

func js(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
