// Package enhancer turns a raw todo title into a more actionable title plus a
// short list of steps, via an OpenAI-compatible provider when configured and a
// deterministic fallback otherwise.
package enhancer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxResponseSize limits the provider response body read.
const maxResponseSize = 1 * 1024 * 1024 // 1MB

const systemInstruction = `You are a task planning assistant. Given a todo item title, produce a more descriptive, actionable title and between 3 and 5 specific steps to complete it. Respond with only a JSON object of the form {"enhancedTitle": "...", "steps": ["...", "..."]}.`

// Enhancement is the improved title and ordered step list for a todo.
type Enhancement struct {
	EnhancedTitle string   `json:"enhancedTitle"`
	Steps         []string `json:"steps"`
}

// Options configures a Service.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Service produces enhancements. Enhance never returns an error: any provider
// failure degrades to the deterministic fallback.
type Service struct {
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// NewService creates an enhancement service. An empty API key disables the
// provider entirely.
func NewService(opts Options, logger *slog.Logger) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
	}
}

// Enhance returns an enhancement for title. A single provider attempt is made
// when a credential is configured; every failure condition falls back to the
// deterministic transforms with no retry.
func (s *Service) Enhance(ctx context.Context, title string) Enhancement {
	if s.opts.APIKey == "" {
		return s.fallback(title)
	}

	enh, err := s.complete(ctx, title)
	if err != nil {
		s.logger.Warn("provider enhancement failed, using fallback",
			"title", title,
			"error", err)
		return s.fallback(title)
	}
	return enh
}

func (s *Service) fallback(title string) Enhancement {
	return Enhancement{
		EnhancedTitle: EnhanceTitleFallback(title),
		Steps:         GenerateStepsFallback(title),
	}
}

// chatRequest is the OpenAI-compatible request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the OpenAI-compatible response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (s *Service) complete(ctx context.Context, title string) (Enhancement, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: title},
		},
	})
	if err != nil {
		return Enhancement{}, fmt.Errorf("build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.buildURL(), bytes.NewReader(body))
	if err != nil {
		return Enhancement{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.opts.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Enhancement{}, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Enhancement{}, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		preview := string(respBody)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return Enhancement{}, fmt.Errorf("provider error (status %d): %s", resp.StatusCode, preview)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Enhancement{}, fmt.Errorf("parse provider response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Enhancement{}, errors.New("no choices in provider response")
	}

	return parseEnhancement(parsed.Choices[0].Message.Content)
}

func (s *Service) buildURL() string {
	base := strings.TrimSuffix(s.opts.BaseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

// parseEnhancement validates the model output: enhancedTitle must be a
// non-empty string and steps a non-empty string array.
func parseEnhancement(content string) (Enhancement, error) {
	raw := extractJSON(content)
	if raw == "" {
		return Enhancement{}, errors.New("no JSON object in model output")
	}

	var enh Enhancement
	if err := json.Unmarshal([]byte(raw), &enh); err != nil {
		return Enhancement{}, fmt.Errorf("parse model output: %w", err)
	}
	if strings.TrimSpace(enh.EnhancedTitle) == "" {
		return Enhancement{}, errors.New("model output missing enhancedTitle")
	}
	if len(enh.Steps) == 0 {
		return Enhancement{}, errors.New("model output missing steps")
	}
	return enh, nil
}
