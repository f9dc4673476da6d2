package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kailas-cloud/synapse/internal/domain"
)

// Page extraction limits and fallbacks.
const (
	MaxPageText    = 5000
	UntitledPage   = "Untitled"
	NoReadableText = "No readable content found."

	defaultFetchTimeout = 15 * time.Second
	maxBodyBytes        = 4 << 20
	userAgent           = "synapse/1.0 (+https://github.com/kailas-cloud/synapse)"
)

// HTTPFetcher downloads pages over HTTP(S) and extracts title and readable text.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher. A zero timeout uses 15s.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher. Any transport or parse failure wraps domain.ErrFetchFailed.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Page{}, fmt.Errorf("%w: invalid url %q", domain.ErrFetchFailed, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, fmt.Errorf("%w: status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("%w: parse html: %w", domain.ErrFetchFailed, err)
	}
	return extractPage(doc), nil
}

// extractPage pulls the <title> and the visible body text out of a parsed document.
func extractPage(doc *html.Node) Page {
	var (
		title string
		text  strings.Builder
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if title == "" {
					title = collapseSpace(nodeText(n))
				}
				return
			case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg,
				atom.Nav, atom.Header, atom.Footer, atom.Aside, atom.Form, atom.Iframe:
				return
			}
		}
		if n.Type == html.TextNode {
			if s := collapseSpace(n.Data); s != "" {
				if text.Len() > 0 {
					text.WriteByte(' ')
				}
				text.WriteString(s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	p := Page{Title: title, Text: truncateRunes(text.String(), MaxPageText)}
	if p.Title == "" {
		p.Title = UntitledPage
	}
	if p.Text == "" {
		p.Text = NoReadableText
	}
	return p
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
