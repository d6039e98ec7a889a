package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/docbrief/docbrief/internal/config"
	plandomain "github.com/docbrief/docbrief/internal/plan/domain"
	summarizerdomain "github.com/docbrief/docbrief/internal/summarizer/domain"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

type service struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func New(p Params) summarizerdomain.Service {
	clientCfg := openai.DefaultConfig(p.Config.Summarizer.APIKey)
	if base := strings.TrimSpace(p.Config.Summarizer.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}

	timeout := p.Config.Summarizer.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &service{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   p.Config.Summarizer.Model,
		timeout: timeout,
		log:     p.Log.Named("summarizer.service"),
	}
}

const systemPrompt = `You are a document analyst. Summarize the document you are given.
Respond with a single JSON object with these keys:
"executive_summary" (string), "key_points" (array of strings),
"action_items" (array of strings), "important_dates" (array of strings),
"relevant_names" (array of strings), "places" (array of strings).
Respond with JSON only.`

func tierInstruction(tier plandomain.Tier) string {
	switch tier {
	case plandomain.TierLong:
		return "Write a thorough executive summary of 4 to 6 paragraphs and up to 15 key points."
	case plandomain.TierMedium:
		return "Write an executive summary of 2 to 3 paragraphs and up to 8 key points."
	default:
		return "Write a one-paragraph executive summary and up to 5 key points."
	}
}

func (s *service) Summarize(ctx context.Context, text string, tier plandomain.Tier) (*summarizerdomain.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleSystem, Content: tierInstruction(tier)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, summarizerdomain.ErrEmptyResponse
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, summarizerdomain.ErrEmptyResponse
	}

	var summary summarizerdomain.Summary
	if err := json.Unmarshal([]byte(content), &summary); err != nil {
		s.log.Warn("summarizer returned undecodable payload", zap.Error(err))
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &summary, nil
}

func (s *service) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return summarizerdomain.ErrTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return summarizerdomain.ErrInvalidCredential
		case http.StatusTooManyRequests:
			if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
				return summarizerdomain.ErrQuotaExceeded
			}
			return summarizerdomain.ErrRateLimited
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return summarizerdomain.ErrMalformedInput
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return summarizerdomain.ErrInvalidCredential
		case http.StatusTooManyRequests:
			return summarizerdomain.ErrRateLimited
		}
	}

	return err
}

// cleanJSONResponse tolerates models that wrap JSON in markdown code fences.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
