package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"insight-profile/internal/metrics"
	"insight-profile/internal/upstream"
)

// ProviderName identifica al resumidor en errores y metricas.
const ProviderName = "llm"

// LLMClient define la interfaz para generar respuestas con un LLM.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HTTPClient implementa LLMClient usando la API de OpenAI-compatible.
type HTTPClient struct {
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
	temperature  float64
	client       *http.Client
	logger       *zap.Logger
}

// Option ajusta un HTTPClient.
type Option func(*HTTPClient)

// WithSystemPrompt antepone un mensaje de sistema a cada request.
func WithSystemPrompt(s string) Option {
	return func(c *HTTPClient) { c.systemPrompt = s }
}

func WithTemperature(t float64) Option {
	return func(c *HTTPClient) { c.temperature = t }
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.7,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model devuelve el modelo configurado.
func (c *HTTPClient) Model() string {
	return c.model
}

func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	started := time.Now()

	messages := make([]chatMessage, 0, 2)
	if c.systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: c.systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	bodyBytes, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: c.temperature})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		uerr := upstream.FromTransport(ProviderName, err)
		metrics.ObserveUpstream(ProviderName, "generate", string(uerr.Kind), started)
		return "", uerr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		uerr := upstream.FromTransport(ProviderName, err)
		metrics.ObserveUpstream(ProviderName, "generate", string(uerr.Kind), started)
		return "", uerr
	}

	var cr chatResponse
	decodeErr := json.Unmarshal(respBody, &cr)

	if resp.StatusCode >= 400 {
		c.logger.Warn("llm error status", zap.Int("status", resp.StatusCode), zap.String("body", truncate(string(respBody), 500)))
		msg := ""
		if decodeErr == nil && cr.Error != nil {
			msg = cr.Error.Message
		}
		metrics.ObserveUpstream(ProviderName, "generate", metrics.OutcomeRejected, started)
		return "", upstream.Rejected(ProviderName, resp.StatusCode, msg)
	}

	if decodeErr != nil {
		metrics.ObserveUpstream(ProviderName, "generate", metrics.OutcomeUnavailable, started)
		return "", upstream.Unavailable(ProviderName, "unmarshal response", decodeErr)
	}

	if cr.Error != nil {
		metrics.ObserveUpstream(ProviderName, "generate", metrics.OutcomeRejected, started)
		return "", upstream.Rejected(ProviderName, resp.StatusCode, cr.Error.Message)
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		metrics.ObserveUpstream(ProviderName, "generate", metrics.OutcomeUnavailable, started)
		return "", upstream.Unavailable(ProviderName, "llm empty response", nil)
	}

	metrics.ObserveUpstream(ProviderName, "generate", metrics.OutcomeSuccess, started)
	return cr.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
