package v1

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	pkgzerolog "github.com/duynhne/webui-auth-gate/pkg/logger/zerolog"
)

// UIHandler returns the handler for everything the gate protects.
// With an upstream URL it reverse-proxies to the running UI; otherwise it
// serves dir as a single-page app, falling back to index.html.
func UIHandler(upstreamURL, dir string) (gin.HandlerFunc, error) {
	if upstreamURL != "" {
		target, err := url.Parse(upstreamURL)
		if err != nil {
			return nil, fmt.Errorf("parse upstream url: %w", err)
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			pkgzerolog.FromContext(r.Context()).Error().Err(err).Str("upstream", target.Host).Msg("Upstream UI unavailable")
			w.WriteHeader(http.StatusBadGateway)
		}
		return gin.WrapH(proxy), nil
	}

	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		// path.Clean on a rooted path cannot climb above dir.
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
		c.File(index)
	}, nil
}
