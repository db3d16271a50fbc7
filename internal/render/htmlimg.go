package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// HTMLImageClient renders creatives through the external HTML/CSS-to-image
// composition service.
type HTMLImageClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewHTMLImageClient creates a client for the composition service.
func NewHTMLImageClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTMLImageClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLImageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// RenderHTML implements HTMLBackend with bounded retries.
func (c *HTMLImageClient) RenderHTML(ctx context.Context, in HTMLInput) (Result, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return Result{}, fmt.Errorf("marshal input: %w", err)
	}
	var result Result
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("compositor status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("compositor status %d", resp.StatusCode))
		}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return err
		}
		ct := resp.Header.Get("Content-Type")
		if ct == "" {
			ct = "image/png"
		}
		result = Result{Bytes: raw, ContentType: ct}
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return Result{}, fmt.Errorf("render html %s: %w", in.Template, err)
	}
	return result, nil
}
