package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"amazetimes/internal/resilience/circuitbreaker"
	"amazetimes/internal/resilience/retry"
	"amazetimes/internal/usecase/ingest"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// UserAgent identifies the crawler to publishers.
const UserAgent = "AmazeTimesBot/1.0 (+https://amazetimes.in)"

// PageFetcher implements ingest.PageFetcher. It is safe for concurrent use.
type PageFetcher struct {
	client  *http.Client
	breaker *circuitbreaker.Breaker
	cfg     Config
	lookup  func(host string) ([]net.IP, error)
}

var _ ingest.PageFetcher = (*PageFetcher)(nil)

// NewPageFetcher builds a fetcher whose client validates every redirect target.
func NewPageFetcher(cfg Config, logger *slog.Logger) *PageFetcher {
	f := &PageFetcher{
		breaker: circuitbreaker.New(circuitbreaker.PageConfig(), logger),
		cfg:     cfg,
		lookup:  net.LookupIP,
	}
	f.client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.cfg.MaxRedirects {
				return fmt.Errorf("%w: %d", ErrTooManyRedirects, len(via))
			}
			return f.validate(req.URL)
		},
	}
	return f
}

// FetchPage downloads rawURL and extracts its text and lead image.
func (f *PageFetcher) FetchPage(ctx context.Context, rawURL string) (ingest.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ingest.Page{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if err := f.validate(u); err != nil {
		return ingest.Page{}, err
	}
	return circuitbreaker.Do(f.breaker, func() (ingest.Page, error) {
		return f.fetch(ctx, u)
	})
}

func (f *PageFetcher) fetch(ctx context.Context, u *url.URL) (ingest.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return ingest.Page{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		// CheckRedirect のエラーは url.Error に包まれる
		var ue *url.Error
		if errors.As(err, &ue) && (errors.Is(ue.Err, ErrTooManyRedirects) || errors.Is(ue.Err, ErrPrivateIP) || errors.Is(ue.Err, ErrInvalidURL)) {
			return ingest.Page{}, ue.Err
		}
		return ingest.Page{}, fmt.Errorf("request %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ingest.Page{}, &retry.StatusError{Code: resp.StatusCode, URL: u.String()}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodySize+1))
	if err != nil {
		return ingest.Page{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.cfg.MaxBodySize {
		return ingest.Page{}, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, f.cfg.MaxBodySize)
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(body), final)
	if err != nil {
		return ingest.Page{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return ingest.Page{}, fmt.Errorf("%w: no readable text", ErrExtraction)
	}

	image := leadImage(body, final)
	if image == "" {
		image = resolve(final, article.Image)
	}
	return ingest.Page{Text: text, Image: image}, nil
}

// leadImage returns the page's Open Graph or Twitter card image.
func leadImage(body []byte, base *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	for _, sel := range []string{
		`meta[property="og:image:secure_url"]`,
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`link[rel="image_src"]`,
	} {
		node := doc.Find(sel).First()
		v, ok := node.Attr("content")
		if !ok {
			v, ok = node.Attr("href")
		}
		if ok {
			if img := resolve(base, v); img != "" {
				return img
			}
		}
	}
	return ""
}

// resolve makes ref absolute against base and keeps only http(s) links.
func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(r)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

// validate checks the scheme and, when enabled, that the host does not
// resolve to a private address.
func (f *PageFetcher) validate(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidURL)
	}
	if !f.cfg.DenyPrivateIPs {
		return nil
	}

	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolved, err := f.lookup(host)
		if err != nil {
			return fmt.Errorf("%w: lookup %s: %v", ErrInvalidURL, host, err)
		}
		ips = resolved
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateIP, host, ip)
		}
	}
	return nil
}
