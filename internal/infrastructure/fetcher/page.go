// Package fetcher downloads web pages and reduces them to readable text.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TOSAnalyzer/internal/config"
	"TOSAnalyzer/internal/ports"
)

const (
	noiseSelector = "script, style, noscript, nav, header, footer, form, iframe, svg"
	blockSelector = "h1, h2, h3, h4, p, li"
)

// PageFetcher pulls the readable body of a terms page.
type PageFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

var _ ports.PageFetcher = (*PageFetcher)(nil)

// NewPageFetcher wires an HTTP client. A nil client gets the configured timeout
// and refuses loopback, private and link-local targets unless
// cfg.AllowPrivateNetworks is set.
func NewPageFetcher(cfg config.FetcherConfig, client *http.Client) *PageFetcher {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		if cfg.AllowPrivateNetworks {
			client = &http.Client{Timeout: timeout}
		} else {
			client = publicClient(timeout)
		}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "TOSAnalyzer/1.0"
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &PageFetcher{client: client, userAgent: userAgent, maxBytes: maxBytes}
}

// FetchText downloads rawURL and returns its text, one block per line.
func (p *PageFetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	doc, err := p.fetchDocument(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return ExtractText(doc), nil
}

func (p *PageFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// ExtractText strips navigation chrome and collects headings, paragraphs and list
// items from <main> (or <body>). Pages without such blocks fall back to the raw
// text of the root.
func ExtractText(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find("article").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var lines []string
	root.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// nested blocks (a <p> inside an <li>) are reported by the outer element
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if line := collapseSpace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})

	if len(lines) == 0 {
		return collapseSpace(root.Text())
	}
	return strings.Join(lines, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
