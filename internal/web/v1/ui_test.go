package v1

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUIRouter(t *testing.T, upstream, dir string) *gin.Engine {
	t.Helper()
	ui, err := UIHandler(upstream, dir)
	require.NoError(t, err)

	r := gin.New()
	r.NoRoute(ui)
	return r
}

// closeNotifyRecorder adds http.CloseNotifier to httptest.ResponseRecorder,
// as a real server's ResponseWriter has; gin's writer requires it when
// httputil.ReverseProxy serves the request.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
}

func (closeNotifyRecorder) CloseNotify() <-chan bool {
	return make(chan bool)
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(closeNotifyRecorder{w}, httptest.NewRequest(method, path, nil))
	return w
}

func TestUIHandler_StaticDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "web")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>index</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("top secret"), 0o600))

	r := newUIRouter(t, "", dir)

	t.Run("serves files", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/assets/app.js")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "console.log(1)", w.Body.String())
	})

	t.Run("falls back to index", func(t *testing.T) {
		for _, path := range []string{"/", "/settings/profile"} {
			w := serve(r, http.MethodGet, path)
			assert.Equal(t, http.StatusOK, w.Code, path)
			assert.Contains(t, w.Body.String(), "index", path)
		}
	})

	t.Run("does not escape the directory", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/../secret.txt")
		assert.NotContains(t, w.Body.String(), "top secret")
	})

	t.Run("rejects writes", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUIHandler_Upstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("upstream " + r.URL.Path))
	}))
	defer upstream.Close()

	r := newUIRouter(t, upstream.URL, "")

	w := serve(r, http.MethodGet, "/queue/join")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upstream /queue/join", w.Body.String())
}

func TestUIHandler_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	r := newUIRouter(t, url, "")

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestUIHandler_BadUpstream(t *testing.T) {
	_, err := UIHandler("://bad", "")
	assert.Error(t, err)
}

func TestUIHandler_UpstreamBehindGate(t *testing.T) {
	var seen []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path)
		_, _ = w.Write([]byte("upstream " + r.URL.Path))
	}))
	defer upstream.Close()

	ui, err := UIHandler(upstream.URL, "")
	require.NoError(t, err)

	s := newTestServer(t)
	s.router.NoRoute(ui)

	for _, target := range []string{
		"/api/predict",
		"/assets/%2e%2e/api/predict",
		"/file=/../api/predict",
	} {
		w := s.do(httptest.NewRequest(http.MethodPost, target, nil))
		assert.Equal(t, http.StatusFound, w.Code, target)
		assert.Equal(t, "/login", w.Header().Get("Location"), target)
	}
	assert.Empty(t, seen, "anonymous requests must not reach the upstream")

	w := s.do(httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upstream /assets/app.js", w.Body.String())
}
