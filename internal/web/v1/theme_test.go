package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootTarget(t *testing.T) {
	tests := []struct {
		name   string
		hint   string
		theme  string
		expect string
	}{
		{"no preference", "", "", "/"},
		{"dark hint", "dark", "", "/?__theme=dark"},
		{"quoted light hint", `"light"`, "", "/?__theme=light"},
		{"explicit theme wins", "dark", "light", "/?__theme=light"},
		{"unknown value", "sepia", "", "/"},
		{"explicit uppercase", "", "DARK", "/?__theme=dark"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.hint != "" {
				req.Header.Set("Sec-CH-Prefers-Color-Scheme", tt.hint)
			}
			assert.Equal(t, tt.expect, RootTarget(req, tt.theme))
		})
	}

	assert.Equal(t, "/", RootTarget(nil, ""))
}
