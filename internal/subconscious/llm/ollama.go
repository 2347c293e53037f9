package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/hoxofp/subconscious/internal/subconscious/cogerrors"
)

// Config configures an Ollama-backed Provider.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultConfig mirrors the original reference implementation's defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1:8b",
		Timeout: 15 * time.Minute,
	}
}

// OllamaProvider implements Provider against a local Ollama server, the
// way the teacher's internal/inference.Client talks to Ollama's HTTP API.
type OllamaProvider struct {
	cfg    Config
	client *http.Client
	// limiter throttles outbound requests. A single local Ollama server
	// is shared between foreground think calls and the background dream
	// loop's hypothesis generation; without a limiter the two can pile
	// concurrent requests onto it.
	limiter *rate.Limiter
}

// NewOllamaProvider constructs a provider for the given configuration,
// limited to 2 requests/second with a burst of 2.
func NewOllamaProvider(cfg Config) *OllamaProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Minute
	}
	return &OllamaProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

func (p *OllamaProvider) ModelName() string { return p.cfg.Model }

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	System  string  `json:"system,omitempty"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate issues a single non-streaming completion request.
func (p *OllamaProvider) Generate(ctx context.Context, prompt, system string, temperature float64, maxTokens int) (string, error) {
	body := generateRequest{
		Model: p.cfg.Model, Prompt: prompt, System: system, Stream: false,
		Options: options{Temperature: temperature, NumPredict: maxTokens},
	}
	var resp generateResponse
	if err := p.post(ctx, "/api/generate", body, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
}

type chatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// Chat issues a single non-streaming chat completion request.
func (p *OllamaProvider) Chat(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	body := chatRequest{
		Model: p.cfg.Model, Messages: messages, Stream: false,
		Options: options{Temperature: temperature, NumPredict: maxTokens},
	}
	var resp chatResponse
	if err := p.post(ctx, "/api/chat", body, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed requests an embedding vector for text. Callers must tolerate an
// empty result: on any transport or decode error, Embed returns (nil, nil)
// rather than an error, matching the "embed may be unavailable" contract.
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	if err := p.post(ctx, "/api/embed", embedRequest{Model: p.cfg.Model, Input: text}, &resp); err != nil {
		return nil, nil
	}
	if len(resp.Embeddings) == 0 {
		return nil, nil
	}
	return resp.Embeddings[0], nil
}

// Stream issues a streaming generate request, returning a channel of text
// chunks. The channel is closed when generation completes, the context is
// canceled, or an error occurs; it is finite, single-pass and not
// restartable.
func (p *OllamaProvider) Stream(ctx context.Context, prompt, system string, temperature float64) (<-chan string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("llm: rate limit wait: %w: %w", cogerrors.ErrProvider, err)
	}

	body := generateRequest{
		Model: p.cfg.Model, Prompt: prompt, System: system, Stream: true,
		Options: options{Temperature: temperature},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal stream request: %w: %w", cogerrors.ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("llm: build stream request: %w: %w", cogerrors.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: stream request: %w: %w", cogerrors.ErrProvider, err)
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			var chunk generateResponse
			if err := json.Unmarshal(scanner.Bytes(), &chunk); err != nil {
				continue
			}
			if chunk.Response != "" {
				select {
				case out <- chunk.Response:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Done {
				return
			}
		}
	}()

	return out, nil
}

func (p *OllamaProvider) post(ctx context.Context, path string, body, into any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("llm: rate limit wait: %w: %w", cogerrors.ErrProvider, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("llm: marshal request: %w: %w", cogerrors.ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("llm: build request: %w: %w", cogerrors.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("llm: request %s: %w: %w", path, cogerrors.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm: %s returned status %d: %w", path, resp.StatusCode, cogerrors.ErrProvider)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("llm: decode %s response: %w: %w", path, cogerrors.ErrProvider, err)
	}
	return nil
}
