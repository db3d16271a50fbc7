// Package scrape is the client for the external page-scraping collaborator.
// The scraper returns a loosely-typed bag of raw page signals; every field is
// optional and the pipeline's merge step supplies defaults.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PageSignals is the raw output of the scraper for one URL. All fields may be
// empty; nothing here is validated beyond JSON shape.
type PageSignals struct {
	ColorsByRole map[string][]string `json:"colors_by_role,omitempty"` // e.g. "primary", "background", "accent"
	Fonts        []string            `json:"fonts,omitempty"`
	Headings     []string            `json:"headings,omitempty"`
	Description  string              `json:"description,omitempty"`
	LogoURL      string              `json:"logo_url,omitempty"`
	HeroImageURL string              `json:"hero_image_url,omitempty"`
	ImageURLs    []string            `json:"image_urls,omitempty"`
	Gradients    []string            `json:"gradients,omitempty"`
	Shadows      []string            `json:"shadows,omitempty"`
	Radii        []string            `json:"radii,omitempty"`
	RawText      string              `json:"raw_text,omitempty"`
}

// StyleHints flattens the styling signals for the extraction collaborator.
func (s *PageSignals) StyleHints() map[string]string {
	hints := make(map[string]string)
	for role, colors := range s.ColorsByRole {
		if len(colors) > 0 {
			hints["color_"+role] = strings.Join(colors, ",")
		}
	}
	if len(s.Fonts) > 0 {
		hints["fonts"] = strings.Join(s.Fonts, ",")
	}
	if len(s.Gradients) > 0 {
		hints["gradients"] = strings.Join(s.Gradients, ",")
	}
	return hints
}

// Scraper fetches page signals for a URL.
type Scraper interface {
	Fetch(ctx context.Context, pageURL string) (*PageSignals, error)
}

// HTTPScraper calls the scraper service.
type HTTPScraper struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewHTTPScraper creates a scraper client for the given service base URL.
func NewHTTPScraper(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPScraper {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPScraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Fetch retrieves signals for pageURL.
func (s *HTTPScraper) Fetch(ctx context.Context, pageURL string) (*PageSignals, error) {
	endpoint := s.baseURL + "/scrape?url=" + url.QueryEscape(pageURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: status %d", pageURL, resp.StatusCode)
	}
	var signals PageSignals
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&signals); err != nil {
		return nil, fmt.Errorf("decode signals: %w", err)
	}
	return &signals, nil
}
