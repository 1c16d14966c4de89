package phpgen

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// ClientPath is where Vite serves its hot-reload client.
	ClientPath = "/@vite/client"
	// HotContextPath is the logical module path the CSS reload listeners hang off.
	HotContextPath = "/@vite-plugin-wp-hmr"
)

const cssListenerTemplate = `hot.on(%s, () => {
  document.querySelectorAll('link[rel="stylesheet"]').forEach((link) => {
    link.href = link.href.replace(/\?.*|$/, '?t=' + Date.now());
  });
});
`

// ClientScriptTag is the tag that loads the Vite client.
func ClientScriptTag(origin Origin) string {
	return fmt.Sprintf(`<script type="module" src="%s"></script>`, origin.ClientURL())
}

// CSSReloadModule returns the body of the inline module that re-fetches
// stylesheets on each event. ok is false when no events are configured.
func CSSReloadModule(origin Origin, events []string) (js string, ok bool) {
	if len(events) == 0 {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "import { createHotContext } from '%s';\n", origin.ClientURL())
	fmt.Fprintf(&b, "const hot = createHotContext('%s');\n", HotContextPath)
	for _, event := range events {
		fmt.Fprintf(&b, cssListenerTemplate, jsString(event))
	}
	return b.String(), true
}

// CSSReloadScript wraps CSSReloadModule in a module script tag.
func CSSReloadScript(origin Origin, events []string) (string, bool) {
	js, ok := CSSReloadModule(origin, events)
	if !ok {
		return "", false
	}
	return "<script type=\"module\">\n" + js + "</script>", true
}

// InjectorMarkup is everything the injector prints into <head>, newline
// terminated.
func InjectorMarkup(origin Origin, events []string) string {
	markup := ClientScriptTag(origin) + "\n"
	if script, ok := CSSReloadScript(origin, events); ok {
		markup += script + "\n"
	}
	return markup
}

// jsString quotes s as a JS string literal. json.Marshal escapes <, > and &
// so an event name can never close the surrounding script tag.
func jsString(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(out)
}
