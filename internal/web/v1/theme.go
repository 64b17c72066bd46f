package v1

import (
	"net/http"
	"net/url"
	"strings"
)

// colorSchemeHeader is the client hint carrying prefers-color-scheme.
const colorSchemeHeader = "Sec-CH-Prefers-Color-Scheme"

// RootTarget returns the application root, with ?__theme= when the client's
// color-scheme preference is known. An explicit theme wins over the client hint.
func RootTarget(r *http.Request, theme string) string {
	if theme == "" && r != nil {
		theme = r.Header.Get(colorSchemeHeader)
	}
	theme = strings.ToLower(strings.Trim(strings.TrimSpace(theme), `"`))

	switch theme {
	case "dark", "light":
		return "/?" + url.Values{"__theme": {theme}}.Encode()
	default:
		return "/"
	}
}
