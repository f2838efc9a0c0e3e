// Package ai is the HTTP client for the text generation backend that
// powers chat blocks and the "generate blocks" action.
package ai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/slatecanvas/slate/pkg/board"
)

const (
	defaultTimeout = 30 * time.Second
	maxAttempts    = 3
	baseBackoff    = 500 * time.Millisecond
)

// ErrEmptyPrompt is returned when the caller provides no prompt text.
var ErrEmptyPrompt = errors.New("ai: empty prompt")

// Client talks to the generation endpoint. Responses are cached in memory
// keyed by a hash of the request, so repeating a prompt is free.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration

	mu    sync.Mutex
	cache map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// install a scripted transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a client for the endpoint at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		backoff:    baseBackoff,
		cache:      make(map[string]string),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Mode   string `json:"mode"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// GenerateText sends the prompt and returns the generated text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, "text")
}

// blockSpec is the backend's block description for GenerateBlocks.
type blockSpec struct {
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Content string  `json:"content"`
}

// GenerateBlocks asks the backend for a block layout and converts it to
// board blocks. Unknown block types come back as text blocks.
func (c *Client) GenerateBlocks(ctx context.Context, prompt string) ([]board.Block, error) {
	raw, err := c.generate(ctx, prompt, "blocks")
	if err != nil {
		return nil, err
	}
	var specs []blockSpec
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		return nil, fmt.Errorf("ai: decode block layout: %w", err)
	}
	blocks := make([]board.Block, 0, len(specs))
	for _, s := range specs {
		switch board.BlockType(s.Type) {
		case board.BlockChat:
			blocks = append(blocks, board.NewChatBlock(s.X, s.Y))
		default:
			blocks = append(blocks, board.NewTextBlock(s.X, s.Y, s.Content))
		}
	}
	return blocks, nil
}

func (c *Client) generate(ctx context.Context, prompt, mode string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	key := cacheKey(prompt, mode)
	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	body, err := json.Marshal(generateRequest{Prompt: prompt, Mode: mode})
	if err != nil {
		return "", fmt.Errorf("ai: encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.backoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
		text, retryable, err := c.doRequest(ctx, body)
		if err == nil {
			c.mu.Lock()
			c.cache[key] = text
			c.mu.Unlock()
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

// doRequest performs one attempt. retryable reports whether the failure
// is transient (429, 5xx, or a network error).
func (c *Client) doRequest(ctx context.Context, body []byte) (text string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("ai: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("ai: server returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("ai: server returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", false, fmt.Errorf("ai: decode response: %w", err)
	}
	if out.Error != "" {
		return "", false, fmt.Errorf("ai: %s", out.Error)
	}
	return out.Text, false, nil
}

func cacheKey(prompt, mode string) string {
	sum := sha256.Sum256([]byte(mode + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
