package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// LLMClient define la interfaz para generar respuestas con un LLM.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (Generation, error)
}

// Options son los parámetros fijos de muestreo que acompañan cada prompt.
type Options struct {
	SystemPrompt string
	MaxTokens    int
	N            int
	Temperature  float64
}

// DefaultOptions reproduce los parámetros con los que se calibraron los prompts.
func DefaultOptions() Options {
	return Options{
		SystemPrompt: "You are a helpful assistant.",
		MaxTokens:    2000,
		N:            1,
		Temperature:  0.3,
	}
}

// HTTPClient implementa LLMClient contra un endpoint POST /generate.
// Hace un solo intento por llamada; reintentos y timeouts quedan del lado del llamador.
type HTTPClient struct {
	endpoint string
	opts     Options
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient construye el cliente. httpClient nil usa http.DefaultClient.
func NewHTTPClient(endpoint string, opts Options, httpClient *http.Client, logger *zap.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaults.SystemPrompt
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	if opts.N <= 0 {
		opts.N = defaults.N
	}
	return &HTTPClient{
		endpoint: strings.TrimSpace(endpoint),
		opts:     opts,
		client:   httpClient,
		logger:   logger,
	}
}

func (c *HTTPClient) Generate(ctx context.Context, prompt string) (Generation, error) {
	reqBody := generateRequest{
		Prompt:            []string{normalizeQuotes(prompt)},
		ApplyChatTemplate: true,
		SystemPrompt:      c.opts.SystemPrompt,
		MaxTokens:         c.opts.MaxTokens,
		N:                 c.opts.N,
		Temperature:       c.opts.Temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Generation{}, &RequestError{Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return Generation{}, &RequestError{Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("llm request failed", zap.Error(err))
		return Generation{}, &RequestError{Message: "do request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Generation{}, &RequestError{Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("llm error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), 512)),
		)
		return Generation{}, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(truncate(string(respBody), 512)),
		}
	}

	gen := parseGeneration(respBody)
	c.logger.Debug("llm response",
		zap.Stringer("kind", gen.Kind),
		zap.Int("bytes", len(respBody)),
	)
	return gen, nil
}

// parseGeneration decide la forma de la respuesta una sola vez.
func parseGeneration(body []byte) Generation {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err == nil {
			return Structured(json.RawMessage(compact.Bytes()))
		}
	}
	return Raw(string(trimmed))
}

// normalizeQuotes reemplaza comillas simples por dobles antes de armar el payload.
func normalizeQuotes(prompt string) string {
	return strings.ReplaceAll(prompt, "'", `"`)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type generateRequest struct {
	Prompt            []string `json:"prompt"`
	ApplyChatTemplate bool     `json:"apply_chat_template"`
	SystemPrompt      string   `json:"system_prompt"`
	MaxTokens         int      `json:"max_tokens"`
	N                 int      `json:"n"`
	Temperature       float64  `json:"temperature"`
}
