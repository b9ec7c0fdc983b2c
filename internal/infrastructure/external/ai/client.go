// Package ai implements the text-generation API client used for quiz
// answer evaluation, recommendation explanations and tutor chat
// replies. It speaks the
// OpenAI-compatible chat completion protocol, so any conforming
// endpoint works.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skillforge/skillforge-learning-hub/internal/domain/shared"
	"github.com/skillforge/skillforge-learning-hub/pkg/circuitbreaker"
	"github.com/skillforge/skillforge-learning-hub/pkg/logger"
	"github.com/skillforge/skillforge-learning-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrRateLimited is returned when the local rate budget is exhausted.
	ErrRateLimited = errors.New("ai: rate limit exceeded")

	// ErrEmptyResponse is returned when the API returns no choices.
	ErrEmptyResponse = errors.New("ai: empty completion response")
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the generation API client.
type Config struct {
	// BaseURL is the API base URL, e.g. "https://api.openai.com/v1".
	BaseURL string

	// APIKey is sent as a bearer token.
	APIKey string

	// Model is the model name sent with each request.
	Model string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimiter controls the local request budget.
	RateLimiter RateLimiterConfig

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultConfig returns sensible defaults for the given endpoint.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       "gpt-4o-mini",
		Timeout:     15 * time.Second,
		RateLimiter: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the generation API client. It satisfies the evaluator and
// explanation-generator interfaces consumed by the application layer.
type Client struct {
	config         Config
	httpClient     *http.Client
	log            *logger.Logger
	rateLimiter    *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retrier        *retry.Retrier
}

// NewClient creates a new generation API client.
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	log := cfg.Logger.With(logger.String("component", "ai_client"))

	return &Client{
		config:      cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         log,
		rateLimiter: NewRateLimiter(cfg.RateLimiter),
		circuitBreaker: circuitbreaker.GenerationAPIBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
		retrier: retry.GenerationAPIRetrier(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ANSWER EVALUATION
// ══════════════════════════════════════════════════════════════════════════════

const evaluateSystemPrompt = `You are a strict but fair grader for an online learning platform.
Grade the student's answer to the question. Respond with JSON only, in the form
{"points": <integer from 0 to the maximum>, "feedback": "<one or two sentences>"}.`

// evaluationReply is the JSON document the model is asked to produce.
type evaluationReply struct {
	Points   int    `json:"points"`
	Feedback string `json:"feedback"`
}

// EvaluateAnswer grades a free-form answer, returning awarded points
// and short feedback. Points are clamped to [0, maxPoints].
func (c *Client) EvaluateAnswer(ctx context.Context, question, answer string, maxPoints int) (int, string, error) {
	prompt := fmt.Sprintf(
		"Question: %s\nMaximum points: %d\nStudent answer: %s",
		question, maxPoints, answer,
	)

	content, err := c.complete(ctx, evaluateSystemPrompt, prompt)
	if err != nil {
		return 0, "", err
	}

	var reply evaluationReply
	if err := json.Unmarshal([]byte(extractJSON(content)), &reply); err != nil {
		return 0, "", fmt.Errorf("%w: unparseable evaluation %q", shared.ErrAIUnavailable, content)
	}

	points := reply.Points
	if points < 0 {
		points = 0
	}
	if points > maxPoints {
		points = maxPoints
	}
	return points, reply.Feedback, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION EXPLANATIONS
// ══════════════════════════════════════════════════════════════════════════════

const explainSystemPrompt = `You write one-sentence course recommendation explanations for an
online learning platform. Be concrete and encouraging. Reply with the sentence only.`

// GenerateExplanation produces a short reason why the course is being
// recommended to the student.
func (c *Client) GenerateExplanation(ctx context.Context, courseTitle, category string, completedCategories []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s (category: %s).", courseTitle, category)
	if len(completedCategories) > 0 {
		fmt.Fprintf(&b, " The student has completed courses in: %s.",
			strings.Join(completedCategories, ", "))
	} else {
		b.WriteString(" The student has not completed any courses yet.")
	}

	content, err := c.complete(ctx, explainSystemPrompt, b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TUTOR CHAT
// ══════════════════════════════════════════════════════════════════════════════

const tutorSystemPrompt = `You are a helpful tutor for an online learning platform.
Answer the student's question clearly and give concrete educational guidance.
Keep the reply to a few sentences.`

// AnswerQuestion produces a tutoring reply to a free-form student
// question. Course title and description, when present, anchor the
// reply to the course the student is working through.
func (c *Client) AnswerQuestion(ctx context.Context, question, courseTitle, courseDescription string) (string, error) {
	system := tutorSystemPrompt
	if courseTitle != "" {
		system += fmt.Sprintf(" The student is asking about the course %q.", courseTitle)
		if courseDescription != "" {
			system += " Course description: " + courseDescription
		}
	}

	content, err := c.complete(ctx, system, question)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAT COMPLETION TRANSPORT
// ══════════════════════════════════════════════════════════════════════════════

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// complete runs one chat completion through the rate limiter, circuit
// breaker and retrier. All transport failures map to ErrAIUnavailable
// so callers can fall back deterministically.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if err := c.rateLimiter.Allow(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAIUnavailable, err)
	}

	var content string
	err := c.circuitBreaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			var err error
			content, err = c.doCompletion(ctx, system, user)
			return err
		})
	})
	if err != nil {
		c.log.Warn("completion failed", logger.Err(err))
		return "", fmt.Errorf("%w: %v", shared.ErrAIUnavailable, err)
	}
	return content, nil
}

func (c *Client) doCompletion(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		MaxTokens:   300,
	})
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to parsing
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", retry.Retryable(fmt.Errorf("api status %d: %s", resp.StatusCode, truncate(respBody, 200)))
	default:
		return "", retry.Permanent(fmt.Errorf("api status %d: %s", resp.StatusCode, truncate(respBody, 200)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", retry.Permanent(fmt.Errorf("parse response: %w", err))
	}
	if parsed.Error != nil {
		return "", retry.Permanent(fmt.Errorf("api error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return "", retry.Permanent(ErrEmptyResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

// extractJSON pulls the first {...} block out of a completion; models
// occasionally wrap the JSON in markdown fences.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
