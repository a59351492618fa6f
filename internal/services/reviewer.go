package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-reviewer/internal/models"
)

// ErrMalformedReview means the model answered with JSON that does not fit
// the review shape.
var ErrMalformedReview = errors.New("AI returned malformed JSON")

// ReviewerService produces a ReviewResult from resume text.
type ReviewerService interface {
	Review(ctx context.Context, resumeText, jobDescription string) (*models.ReviewResult, error)
}

type reviewerService struct {
	geminiService GeminiService
	promptBuilder *PromptBuilder
	retry         RetryPolicy
	log           *zap.Logger
}

func NewReviewerService(geminiService GeminiService, maxPromptChars int, retry RetryPolicy, log *zap.Logger) ReviewerService {
	return &reviewerService{
		geminiService: geminiService,
		promptBuilder: NewPromptBuilder(maxPromptChars),
		retry:         retry,
		log:           log,
	}
}

// Review implements ReviewerService.
func (r *reviewerService) Review(ctx context.Context, resumeText, jobDescription string) (*models.ReviewResult, error) {
	prompt, truncated := r.promptBuilder.BuildReviewPrompt(resumeText, jobDescription)
	if truncated {
		r.log.Warn("prompt is very long, truncated", zap.Int("max_chars", r.promptBuilder.maxChars))
	}
	r.log.Debug("review prompt built", zap.Int("chars", len(prompt)))

	// A reply that does not parse counts as a failed attempt.
	schema := ReviewSchema()
	result, err := retryWithBackoff(ctx, r.retry, r.log, func(ctx context.Context) (*models.ReviewResult, error) {
		response, err := r.geminiService.GenerateJSON(ctx, prompt, schema)
		if err != nil {
			return nil, err
		}
		result, err := parseReview(response)
		if err != nil {
			r.log.Warn("failed to parse review response", zap.Error(err), zap.Int("chars", len(response)))
			return nil, err
		}
		return result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate review: %w", err)
	}

	return result, nil
}

// parseReview decodes the model output and checks that every section the
// frontend renders is there. The score is clamped to [0, 100].
func parseReview(response string) (*models.ReviewResult, error) {
	var result models.ReviewResult
	if err := json.Unmarshal([]byte(extractJSON(response)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReview, err)
	}

	switch {
	case result.AtsFriendliness == nil:
		return nil, fmt.Errorf("%w: missing ats_friendliness", ErrMalformedReview)
	case result.AtsFriendliness.Score == nil:
		return nil, fmt.Errorf("%w: missing ats_friendliness.score", ErrMalformedReview)
	case result.KeywordSuitability == nil:
		return nil, fmt.Errorf("%w: missing keyword_suitability", ErrMalformedReview)
	}

	score := *result.AtsFriendliness.Score
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	result.AtsFriendliness.Score = &score

	result.AtsFriendliness.Suggestions = nonNil(result.AtsFriendliness.Suggestions)
	result.Improvements = nonNil(result.Improvements)
	result.Mistakes = nonNil(result.Mistakes)
	result.KeywordSuitability.SuggestedKeywords = nonNil(result.KeywordSuitability.SuggestedKeywords)
	result.LinkedinOptimization = nonNil(result.LinkedinOptimization)

	return &result, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return strings.TrimSpace(text)
}
