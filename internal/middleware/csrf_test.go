package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCSRFRouter(hosts ...string) *gin.Engine {
	r := gin.New()
	r.Use(CSRFMiddleware(hosts...))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/papers", ok)
	r.POST("/api/papers", ok)
	r.DELETE("/api/papers/1", ok)
	return r
}

func doCSRF(r *gin.Engine, method, path string, headers map[string]string) int {
	return doCSRFHost(r, method, path, "", headers)
}

func doCSRFHost(r *gin.Engine, method, path, host string, headers map[string]string) int {
	req := httptest.NewRequest(method, path, nil)
	if host != "" {
		req.Host = host
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestCSRF_Matrix(t *testing.T) {
	r := newCSRFRouter("example.com")

	cases := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		want    int
	}{
		{"same-origin post", http.MethodPost, "/api/papers",
			map[string]string{"Origin": "https://example.com"}, http.StatusOK},
		{"same-origin with port", http.MethodPost, "/api/papers",
			map[string]string{"Origin": "https://example.com:443"}, http.StatusOK},
		{"cross-origin post", http.MethodPost, "/api/papers",
			map[string]string{"Origin": "https://evil.example.net"}, http.StatusForbidden},
		{"cross-origin delete", http.MethodDelete, "/api/papers/1",
			map[string]string{"Origin": "https://evil.example.net"}, http.StatusForbidden},
		{"referer fallback match", http.MethodPost, "/api/papers",
			map[string]string{"Referer": "https://example.com/admin/papers"}, http.StatusOK},
		{"referer fallback mismatch", http.MethodPost, "/api/papers",
			map[string]string{"Referer": "https://evil.example.net/form"}, http.StatusForbidden},
		{"no origin headers", http.MethodPost, "/api/papers", nil, http.StatusOK},
		{"garbage origin", http.MethodPost, "/api/papers",
			map[string]string{"Origin": "::not-a-url::"}, http.StatusForbidden},
		{"get is exempt", http.MethodGet, "/api/papers",
			map[string]string{"Origin": "https://evil.example.net"}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := doCSRF(r, tc.method, tc.path, tc.headers); got != tc.want {
				t.Errorf("status = %d, want %d", got, tc.want)
			}
		})
	}
}

// The request's own Host header is always an accepted origin, independent of
// any configured extra hosts.
func TestCSRF_RequestHostAccepted(t *testing.T) {
	r := newCSRFRouter("localhost", "127.0.0.1")

	cases := []struct {
		name    string
		host    string
		headers map[string]string
		want    int
	}{
		{"origin matches request host", "mysite.example",
			map[string]string{"Origin": "https://mysite.example"}, http.StatusOK},
		{"origin matches request host with port", "mysite.example:8080",
			map[string]string{"Origin": "https://mysite.example"}, http.StatusOK},
		{"referer matches request host", "mysite.example",
			map[string]string{"Referer": "https://mysite.example/admin"}, http.StatusOK},
		{"origin differs from request host", "mysite.example",
			map[string]string{"Origin": "https://evil.example.net"}, http.StatusForbidden},
		{"configured extra still accepted", "mysite.example",
			map[string]string{"Origin": "http://localhost:3000"}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := doCSRFHost(r, http.MethodPost, "/api/papers", tc.host, tc.headers); got != tc.want {
				t.Errorf("status = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCSRF_MultipleAllowedHosts(t *testing.T) {
	r := newCSRFRouter("example.com", "localhost")

	if got := doCSRF(r, http.MethodPost, "/api/papers",
		map[string]string{"Origin": "http://localhost:3000"}); got != http.StatusOK {
		t.Errorf("localhost origin status = %d, want 200", got)
	}
}
