// Package ai is the client for the generative-text collaborator. It treats
// the service as a black box behind a chat-completions style HTTP API:
// parameter extraction from scraped text, tonal copy variants and copy
// translation. Contract quality checks live here; prompt engineering does not.
package ai

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

	"github.com/adforge/backend/internal/copygen"
	"github.com/adforge/backend/internal/models"
)

// Client is the generative-text collaborator interface used by the pipeline.
type Client interface {
	copygen.Refiner
	// ExtractParameters infers marketing parameters from raw page text. The
	// response must carry a non-trivial product name and at least one
	// customer pain, or the call counts as failed.
	ExtractParameters(ctx context.Context, rawText string, styleHints map[string]string, sourceURL string) (*models.Parameters, error)
}

// Config holds collaborator endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// HTTPClient talks to the collaborator over HTTP.
type HTTPClient struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewHTTPClient creates the collaborator client.
func NewHTTPClient(cfg Config, logger *zap.Logger) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("ai: missing API key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// chatJSON sends one completion request and decodes the JSON content into out.
func (c *HTTPClient) chatJSON(ctx context.Context, system, user string, out any) error {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("collaborator status %d: %s", resp.StatusCode, firstLine(raw))
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("collaborator error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return fmt.Errorf("collaborator returned no choices")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode content: %w", err)
	}
	return nil
}

const (
	extractAttempts = 3
)

// ExtractParameters implements Client. It retries with exponential backoff;
// responses failing the minimum-quality contract count as failures.
func (c *HTTPClient) ExtractParameters(ctx context.Context, rawText string, styleHints map[string]string, sourceURL string) (*models.Parameters, error) {
	hints, _ := json.Marshal(styleHints)
	user := fmt.Sprintf("Source URL: %s\nStyle hints: %s\nPage text:\n%s", sourceURL, hints, rawText)

	var params *models.Parameters
	op := func() error {
		var got models.Parameters
		if err := c.chatJSON(ctx, extractSystemPrompt, user, &got); err != nil {
			return err
		}
		if err := checkExtraction(&got); err != nil {
			c.logger.Warn("extraction response rejected", zap.Error(err))
			return err
		}
		got.Normalize()
		params = &got
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), extractAttempts-1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, fmt.Errorf("extract parameters: %w", err)
	}
	return params, nil
}

// checkExtraction enforces the minimum-quality contract.
func checkExtraction(p *models.Parameters) error {
	name := strings.TrimSpace(p.ProductName)
	if len(name) < 2 || strings.EqualFold(name, "unknown") || strings.EqualFold(name, "n/a") {
		return fmt.Errorf("extraction missing product name")
	}
	if len(p.CustomerPains) == 0 {
		return fmt.Errorf("extraction missing customer pains")
	}
	return nil
}

type copyPayload struct {
	PrimaryText string `json:"primary_text"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
}

// Variants implements copygen.Refiner.
func (c *HTTPClient) Variants(ctx context.Context, base copygen.GeneratedCopy, n int) ([]copygen.GeneratedCopy, error) {
	user := fmt.Sprintf(
		"Rewrite this ad copy in %d alternate tones. Keep headline <= %d chars, description <= %d chars, primary text <= %d chars.\n%s",
		n, copygen.HeadlineMaxLen, copygen.DescriptionMaxLen, copygen.PrimaryTextMaxLen, mustJSON(copyPayload{
			PrimaryText: base.PrimaryText, Headline: base.Headline, Description: base.Description,
		}))
	var got struct {
		Variants []copyPayload `json:"variants"`
	}
	if err := c.chatJSON(ctx, variantSystemPrompt, user, &got); err != nil {
		return nil, err
	}
	out := make([]copygen.GeneratedCopy, 0, len(got.Variants))
	for _, v := range got.Variants {
		out = append(out, copygen.GeneratedCopy{
			PrimaryText: v.PrimaryText, Headline: v.Headline, Description: v.Description,
		})
	}
	return out, nil
}

// Translate implements copygen.Refiner.
func (c *HTTPClient) Translate(ctx context.Context, base copygen.GeneratedCopy, language string) (copygen.GeneratedCopy, error) {
	user := fmt.Sprintf("Translate this ad copy to %q, keeping the same length limits.\n%s",
		language, mustJSON(copyPayload{
			PrimaryText: base.PrimaryText, Headline: base.Headline, Description: base.Description,
		}))
	var got copyPayload
	if err := c.chatJSON(ctx, translateSystemPrompt, user, &got); err != nil {
		return copygen.GeneratedCopy{}, err
	}
	return copygen.GeneratedCopy{
		PrimaryText: got.PrimaryText, Headline: got.Headline, Description: got.Description,
	}, nil
}

const (
	extractSystemPrompt = "You extract marketing parameters from landing-page text. " +
		"Respond with a single JSON object matching the parameter schema: product_name, category, description, price, " +
		"brand_name, key_benefit, key_differentiator, value_props, customer_pains, customer_desires, objections, " +
		"urgency_hooks, social_proof, testimonials, personas, tone, business_type, language, target_countries."
	variantSystemPrompt   = "You rewrite ad copy in alternate tones. Respond with JSON: {\"variants\": [{\"primary_text\", \"headline\", \"description\"}]}."
	translateSystemPrompt = "You translate ad copy. Respond with JSON: {\"primary_text\", \"headline\", \"description\"}."
)

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
