// Package scraper fetches public web pages and reduces them to readable text
// for ingestion into the vector store.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	DefaultMinTextLength = 200
	defaultTimeout       = 10 * time.Second
	maxBodyBytes         = 8 << 20
)

var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrFetch            = errors.New("fetch page failed")
	ErrInsufficientText = errors.New("page contained insufficient text to be useful")
)

type Options struct {
	Timeout           time.Duration
	MinTextLength     int
	RequestsPerSecond float64
	UserAgent         string
}

type Page struct {
	URL  string
	Text string
}

// Scraper is safe for concurrent use; requests share one rate limiter.
type Scraper struct {
	client    *http.Client
	limiter   *rate.Limiter
	minText   int
	userAgent string
}

func New(opts Options) *Scraper {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Scraper{
		client:    &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
		minText:   opts.MinTextLength,
		userAgent: opts.UserAgent,
	}
}

// Fetch downloads rawURL and returns its visible text.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetch, resp.StatusCode)
	}

	text, err := ExtractText(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if len(text) < s.minText {
		return nil, ErrInsufficientText
	}
	return &Page{URL: u.String(), Text: text}, nil
}

// ExtractText returns the visible text of an HTML document, one non-empty
// trimmed line per text run. script, style and noscript are dropped.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
