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

// VideoClient renders creatives through the external video generation service.
// Video jobs run long; the service answers with the finished clip bytes or a
// URL the client then downloads.
type VideoClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewVideoClient creates a client for the video service.
func NewVideoClient(baseURL string, timeout time.Duration, logger *zap.Logger) *VideoClient {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type videoResponse struct {
	URL         string `json:"url,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data,omitempty"` // base64 via JSON
}

// RenderVideo implements VideoBackend with bounded retries.
func (c *VideoClient) RenderVideo(ctx context.Context, in VideoInput) (Result, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return Result{}, fmt.Errorf("marshal input: %w", err)
	}
	var result Result
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/videos", bytes.NewReader(body))
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
			return fmt.Errorf("video service status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("video service status %d", resp.StatusCode))
		}
		var vr videoResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 256<<20)).Decode(&vr); err != nil {
			return err
		}
		if len(vr.Data) > 0 {
			ct := vr.ContentType
			if ct == "" {
				ct = "video/mp4"
			}
			result = Result{Bytes: vr.Data, ContentType: ct}
			return nil
		}
		if vr.URL == "" {
			return backoff.Permanent(fmt.Errorf("video service returned neither data nor url"))
		}
		return c.download(ctx, vr.URL, &result)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return Result{}, fmt.Errorf("render video: %w", err)
	}
	return result, nil
}

func (c *VideoClient) download(ctx context.Context, url string, out *Result) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("video download status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 256<<20))
	if err != nil {
		return err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "video/mp4"
	}
	*out = Result{Bytes: raw, ContentType: ct}
	return nil
}
