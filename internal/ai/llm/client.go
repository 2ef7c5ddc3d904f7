package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/heyitsgautham/skil-sync-fullstack/pkg/errx"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/logx"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	maxPasses         = 3
	maxAttemptsPerKey = 3
	temperature       = 0.1
	maxTokens         = 8000
)

// Client is a chat-completion gateway that rotates through the key pool.
// Rate-limited keys are sidelined for the current pass, invalid keys for the
// life of the process; transient failures retry the same key with a growing
// backoff.
type Client struct {
	pool  *KeyPool
	model string

	mu      sync.Mutex
	clients map[string]*openai.Client
}

func NewClient(pool *KeyPool, model string) *Client {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		pool:    pool,
		model:   model,
		clients: make(map[string]*openai.Client),
	}
}

func (c *Client) clientFor(key string) *openai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.clients[key]; ok {
		return cl
	}
	cl := openai.NewClient(option.WithAPIKey(key))
	c.clients[key] = &cl
	return &cl
}

// Complete runs one chat completion for the given purpose and returns the
// reply text with markdown code fences stripped.
func (c *Client) Complete(ctx context.Context, purpose Purpose, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", ErrEmptyPrompt()
	}

	for pass := 0; pass < maxPasses; pass++ {
		keys := c.pool.PriorityFor(purpose)
		for _, key := range keys {
			reply, err := c.completeWithKey(ctx, key, systemPrompt, userPrompt)
			if err == nil {
				return StripFences(reply), nil
			}
			if ctx.Err() != nil {
				return "", errx.Wrap(ctx.Err(), "completion cancelled", errx.TypeInternal)
			}
			logx.Warnf("llm: key unusable for purpose %s: %v", purpose, err)
		}

		// Full pass exhausted: reset the rate-limited set and try once
		// more after a cool-down, in case limits were transient. Revoked
		// keys stay out.
		c.pool.ClearFailed()
		if pass < maxPasses-1 {
			if err := sleepCtx(ctx, time.Second); err != nil {
				return "", errx.Wrap(err, "completion cancelled", errx.TypeInternal)
			}
		}
	}

	return "", ErrUnavailable().WithDetail("purpose", string(purpose))
}

// completeWithKey retries transient errors on one key, marks the key failed
// on rate limits and revoked on auth errors.
func (c *Client) completeWithKey(ctx context.Context, key, systemPrompt, userPrompt string) (string, error) {
	client := c.clientFor(key)

	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	var lastErr error
	for attempt := 0; attempt < maxAttemptsPerKey; attempt++ {
		completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages:    messages,
			Model:       c.model,
			Temperature: openai.Float(temperature),
			MaxTokens:   openai.Int(maxTokens),
		})
		if err == nil {
			if len(completion.Choices) == 0 {
				return "", ErrBadResponse()
			}
			return completion.Choices[0].Message.Content, nil
		}

		if isInvalidKey(err) {
			c.pool.MarkRevoked(key)
			return "", err
		}
		if isRateLimited(err) {
			c.pool.MarkFailed(key)
			return "", err
		}

		lastErr = err
		if serr := sleepCtx(ctx, time.Duration(attempt+1)*500*time.Millisecond); serr != nil {
			return "", serr
		}
	}
	return "", lastErr
}

func isRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit")
}

func isInvalidKey(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid api key") || strings.Contains(msg, "incorrect api key")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StripFences removes a surrounding markdown code fence from an LLM reply.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
