package entity

import (
	"fmt"
	"net"
	"net/url"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateURL validates a URL that the server itself will fetch (feed and article links).
// On top of the format checks of ValidateLinkURL it resolves the host and
// rejects private addresses to prevent SSRF.
func ValidateURL(rawURL string) error {
	parsed, err := parseHTTPURL("url", rawURL)
	if err != nil {
		return err
	}

	// SSRF対策: プライベートIPアドレスをブロック
	ips, err := net.LookupIP(parsed.Hostname())
	if err == nil {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return &ValidationError{Field: "url", Message: "url cannot point to private network"}
			}
		}
	}
	return nil
}

// ValidateLinkURL validates a URL that is only rendered to readers, such as a featured image.
// No DNS lookup is performed; literal private IP hosts are still rejected.
func ValidateLinkURL(field, rawURL string) error {
	parsed, err := parseHTTPURL(field, rawURL)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(parsed.Hostname()); ip != nil && isPrivateIP(ip) {
		return &ValidationError{Field: field, Message: "url cannot point to private network"}
	}
	return nil
}

func parseHTTPURL(field, rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, &ValidationError{Field: field, Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return nil, &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: "URL is malformed"}
	}
	// HTTPまたはHTTPSスキームのみ許可
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &ValidationError{Field: field, Message: "URL must use http or https scheme"}
	}
	if parsed.Host == "" {
		return nil, &ValidationError{Field: field, Message: "URL must have a valid host"}
	}
	return parsed, nil
}

// isPrivateIP reports whether ip is loopback, link-local or inside an RFC 1918 range.
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
		return true
	}
	return ip.IsPrivate()
}
