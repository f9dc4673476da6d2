package ingest

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlatformWeb is used when the URL host cannot be determined.
const PlatformWeb = "Web"

var knownPlatforms = []struct {
	marker string
	name   string
}{
	{"youtube", "YouTube"},
	{"youtu.be", "YouTube"},
	{"medium", "Medium"},
	{"perplexity", "Perplexity"},
}

// SourcePlatform names the site a URL points at: a known platform, else the
// capitalised first host label ("www." ignored).
func SourcePlatform(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return PlatformWeb
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range knownPlatforms {
		if strings.Contains(host, p.marker) {
			return p.name
		}
	}

	host = strings.TrimPrefix(host, "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return PlatformWeb
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}
