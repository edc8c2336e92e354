// Package summarize derives meeting summaries and transcript Q&A answers from
// a flattened transcript via an external chat-completion service.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/meetscribe/meetscribe/internal/errors"
	"github.com/meetscribe/meetscribe/internal/logger"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second

	analyzeSystemPrompt = "You are a meeting analysis assistant. Provide clear, concise, and actionable insights from meeting transcripts."
	querySystemPrompt   = "You are a meeting analysis assistant. Answer questions about the meeting transcript accurately and concisely, using only information from the transcript."
)

// ChatClient is the minimal chat-completion surface the analyzer needs.
type ChatClient interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Analyzer produces meeting analyses and answers transcript questions.
type Analyzer interface {
	Analyze(ctx context.Context, flattened string) (*Analysis, error)
	Query(ctx context.Context, flattened, question string) (string, error)
}

// Service implements Analyzer on top of a ChatClient with retry.
type Service struct {
	client     ChatClient
	log        *logger.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewService creates an analyzer service.
func NewService(client ChatClient, log *logger.Logger) *Service {
	return &Service{
		client:     client,
		log:        log.WithComponent("summarize"),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// Analyze derives a structured analysis from the flattened transcript.
func (s *Service) Analyze(ctx context.Context, flattened string) (*Analysis, error) {
	if flattened == "" {
		return nil, apperrors.Validation("Transcript is empty; nothing to analyze.")
	}

	prompt := fmt.Sprintf(`Analyze the following meeting transcript and provide a structured response with a summary, action items, and key points. Format the response as a JSON object with the following structure:
{
  "summary": "A concise summary of the meeting",
  "actionItems": ["List of specific action items identified"],
  "keyPoints": ["List of key points discussed"]
}

Meeting Transcript:
%s`, flattened)

	resp, err := s.completeWithRetry(ctx, CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: analyzeSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, apperrors.ExternalServiceError("summarization", err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(resp.Content), &analysis); err != nil {
		s.log.Error("Unparseable analysis response", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, apperrors.ExternalServiceError("summarization",
			fmt.Errorf("invalid response format: %w", err))
	}
	if analysis.Summary == "" || analysis.ActionItems == nil || analysis.KeyPoints == nil {
		return nil, apperrors.ExternalServiceError("summarization",
			fmt.Errorf("invalid analysis structure"))
	}
	return &analysis, nil
}

// Query answers a free-form question about the flattened transcript.
func (s *Service) Query(ctx context.Context, flattened, question string) (string, error) {
	if flattened == "" {
		return "", apperrors.Validation("Transcript is empty; nothing to query.")
	}

	prompt := fmt.Sprintf(`Based on the following meeting transcript, please answer the question. Provide a clear, concise, and accurate response that directly addresses the question using only information from the transcript.

Meeting Transcript:
%s

Question: %s

Answer:`, flattened, question)

	resp, err := s.completeWithRetry(ctx, CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: querySystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return "", apperrors.ExternalServiceError("summarization", err)
	}
	if resp.Content == "" {
		return "", apperrors.ExternalServiceError("summarization",
			fmt.Errorf("empty completion"))
	}
	return resp.Content, nil
}

// completeWithRetry retries transient completion failures with linear backoff.
func (s *Service) completeWithRetry(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		resp, err := s.client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		s.log.Warn("Completion attempt failed", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			}
		}
	}
	return nil, lastErr
}
