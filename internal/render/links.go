package render

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Link is an outbound URL with a short human label.
type Link struct {
	Href  string
	Label string
}

// normalizeURL adds https:// when the user left the scheme out.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "mailto:") {
		return "https://" + raw
	}
	return raw
}

// LinkLabel shortens a URL to its registrable domain, e.g.
// "https://www.credly.com/badges/x" becomes "credly.com".
func LinkLabel(raw string) string {
	candidate := normalizeURL(raw)
	if candidate == "" {
		return ""
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return raw
	}
	host := parsed.Hostname()
	if host == "" {
		return raw
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}

func newLink(raw string) *Link {
	href := normalizeURL(raw)
	if href == "" {
		return nil
	}
	return &Link{Href: href, Label: LinkLabel(raw)}
}
