package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"amazetimes/internal/resilience/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestFetcher(cfg Config) *PageFetcher {
	return NewPageFetcher(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const paragraph = "The state assembly met on Monday to discuss the revised budget for rural roads. " +
	"Members from both sides spoke at length about the allocation for district hospitals and schools. "

func articleHTML(head string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>Budget session</title>%s</head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Budget session opens</h1>
<p>%s</p>
<p>%s</p>
<p>%s</p>
</article>
<footer>Copyright</footer>
</body></html>`, head, strings.Repeat(paragraph, 3), strings.Repeat(paragraph, 3), strings.Repeat(paragraph, 3))
}

/* ───────── テスト ───────── */

func TestFetchPage_TextAndOGImage(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, articleHTML(`<meta property="og:image" content="/img/lead.jpg">`))
	}))
	defer srv.Close()

	page, err := newTestFetcher(testConfig()).FetchPage(context.Background(), srv.URL+"/news/budget")
	require.NoError(t, err)

	assert.Contains(t, page.Text, "revised budget for rural roads")
	assert.Equal(t, srv.URL+"/img/lead.jpg", page.Image)
	assert.Equal(t, UserAgent, gotUA)
}

func TestFetchPage_TwitterImageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, articleHTML(`<meta name="twitter:image" content="https://cdn.example.com/t.png">`))
	}))
	defer srv.Close()

	page, err := newTestFetcher(testConfig()).FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/t.png", page.Image)
}

func TestFetchPage_NonHTTPImageIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, articleHTML(`<meta property="og:image" content="javascript:alert(1)">`))
	}))
	defer srv.Close()

	page, err := newTestFetcher(testConfig()).FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(page.Image, "javascript:"))
}

func TestFetchPage_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher(testConfig()).FetchPage(context.Background(), srv.URL)
	require.Error(t, err)

	var se *retry.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.False(t, retry.IsRetryable(err))
}

func TestFetchPage_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", 4096))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 1024
	_, err := newTestFetcher(cfg).FetchPage(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestFetchPage_TooManyRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRedirects = 2
	_, err := newTestFetcher(cfg).FetchPage(context.Background(), srv.URL+"/a")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestFetchPage_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/long/story", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/long/story", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, articleHTML(`<meta property="og:image" content="lead.jpg">`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := newTestFetcher(testConfig()).FetchPage(context.Background(), srv.URL+"/short")
	require.NoError(t, err)
	// relative image resolves against the final URL
	assert.Equal(t, srv.URL+"/long/lead.jpg", page.Image)
}

func TestFetchPage_InvalidURL(t *testing.T) {
	f := newTestFetcher(testConfig())
	for _, raw := range []string{"ftp://example.com/a", "file:///etc/passwd", "http://", "://bad"} {
		_, err := f.FetchPage(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestFetchPage_PrivateAddressDenied(t *testing.T) {
	cfg := testConfig()
	cfg.DenyPrivateIPs = true
	f := newTestFetcher(cfg)
	f.lookup = func(host string) ([]net.IP, error) {
		return []net.IP{net.ParseIP("10.0.0.8")}, nil
	}

	tests := []string{
		"http://127.0.0.1/admin",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]/",
		"http://intranet.example.com/",
	}
	for _, raw := range tests {
		_, err := f.FetchPage(context.Background(), raw)
		assert.ErrorIs(t, err, ErrPrivateIP, raw)
	}
}

func TestFetchPage_RedirectToPrivateDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://192.168.1.1/router", http.StatusFound)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.DenyPrivateIPs = true
	f := newTestFetcher(cfg)
	// httptest listens on loopback; only the redirect target is checked here
	f.lookup = func(string) ([]net.IP, error) { return []net.IP{net.ParseIP("93.184.216.34")}, nil }
	srvURL := strings.Replace(srv.URL, "127.0.0.1", "public.test", 1)
	f.client.Transport = &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, network, srv.Listener.Addr().String())
		},
	}

	_, err := f.FetchPage(context.Background(), srvURL)
	assert.ErrorIs(t, err, ErrPrivateIP)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"tiny body", func(c *Config) { c.MaxBodySize = 10 }, true},
		{"huge body", func(c *Config) { c.MaxBodySize = 200 << 20 }, true},
		{"negative redirects", func(c *Config) { c.MaxRedirects = -1 }, true},
		{"too many redirects", func(c *Config) { c.MaxRedirects = 11 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PAGE_FETCH_ENABLED", "false")
	t.Setenv("PAGE_FETCH_TIMEOUT", "3s")
	t.Setenv("PAGE_FETCH_MAX_REDIRECTS", "2")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxRedirects)
	assert.True(t, cfg.DenyPrivateIPs)
}

func TestLoadConfigFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("PAGE_FETCH_MAX_REDIRECTS", "50")

	cfg, err := LoadConfigFromEnv()
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
