// internal/provider/router.go
package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/config"
	"github.com/xkilldash9x/deskhand/internal/credentials"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Router builds provider-specific HTTP payloads, dispatches them, and turns
// the model's text reply into a validated action list.
type Router struct {
	cfg    config.ProvidersConfig
	creds  *credentials.Store
	client *http.Client
	logger *zap.Logger

	// probeGroup collapses concurrent Ollama probes into one request.
	probeGroup singleflight.Group
}

// NewRouter wires a router over the credential store. Timeouts are applied
// per call from the provider config, so a single client suffices.
func NewRouter(cfg config.ProvidersConfig, creds *credentials.Store, logger *zap.Logger) *Router {
	return &Router{
		cfg:    cfg,
		creds:  creds,
		client: &http.Client{},
		logger: logger.Named("provider"),
	}
}

// GetActions routes one request to the named provider. Missing keys for
// cloud providers are reported before any network traffic.
func (r *Router) GetActions(provider schemas.Provider, screenshotB64 string, uiTree *schemas.UINode, userRequest string) schemas.Result {
	switch provider {
	case schemas.ProviderOpenAI:
		key := r.creds.LoadKey(provider)
		if key == "" {
			return schemas.Fail("OpenAI API key not configured. Add via Settings.")
		}
		return r.callOpenAI(key, screenshotB64, uiTree, userRequest)
	case schemas.ProviderAnthropic:
		key := r.creds.LoadKey(provider)
		if key == "" {
			return schemas.Fail("Anthropic API key not configured. Add via Settings.")
		}
		return r.callAnthropic(key, screenshotB64, uiTree, userRequest)
	case schemas.ProviderOllama:
		return r.callOllama(screenshotB64, uiTree, userRequest)
	}
	return schemas.Failf("Unknown provider: %s", provider)
}

func (r *Router) callOpenAI(apiKey, screenshot string, uiTree *schemas.UINode, request string) schemas.Result {
	payload := buildOpenAIPayload(r.cfg.OpenAI, screenshot, uiTree, request)
	headers := map[string]string{"Authorization": "Bearer " + apiKey}

	body, status, err := r.post(r.cfg.OpenAI.BaseURL+"/v1/chat/completions", payload, headers, r.cfg.OpenAI.Timeout)
	if err != nil {
		return schemas.Failf("OpenAI API error: %v", err)
	}
	if msg := cloudStatusError(schemas.ProviderOpenAI, status, body); msg != "" {
		return schemas.Fail(msg)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return schemas.Failf("Failed to parse OpenAI response: %v", unmarshalErr(err))
	}
	return ParseActions(parsed.Choices[0].Message.Content)
}

func (r *Router) callAnthropic(apiKey, screenshot string, uiTree *schemas.UINode, request string) schemas.Result {
	payload := buildAnthropicPayload(r.cfg.Anthropic, screenshot, uiTree, request)
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": r.cfg.Anthropic.Version,
	}

	body, status, err := r.post(r.cfg.Anthropic.BaseURL+"/v1/messages", payload, headers, r.cfg.Anthropic.Timeout)
	if err != nil {
		return schemas.Failf("Anthropic API error: %v", err)
	}
	if msg := cloudStatusError(schemas.ProviderAnthropic, status, body); msg != "" {
		return schemas.Fail(msg)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Content) == 0 {
		return schemas.Failf("Failed to parse Anthropic response: %v", unmarshalErr(err))
	}
	return ParseActions(parsed.Content[0].Text)
}

func (r *Router) callOllama(screenshot string, uiTree *schemas.UINode, request string) schemas.Result {
	payload := buildOllamaPayload(r.cfg.Ollama, screenshot, uiTree, request)

	body, status, err := r.post(r.cfg.Ollama.BaseURL+"/api/generate", payload, nil, r.cfg.Ollama.Timeout)
	if err != nil {
		return schemas.Failf("Ollama error: %v. Is Ollama running?", err)
	}
	if status < 200 || status > 299 {
		return schemas.Failf("Ollama error: HTTP %d. Is Ollama running?", status)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return schemas.Failf("Failed to parse Ollama response: %v", err)
	}
	return ParseActions(parsed.Response)
}

// post issues a JSON POST with the given deadline and returns the body and
// status code. Transport failures return an error; HTTP-level failures are
// left to the caller's status mapping.
func (r *Router) post(url string, payload any, headers map[string]string, timeout time.Duration) ([]byte, int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	r.logger.Debug("provider call finished",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return body, resp.StatusCode, nil
}

// cloudStatusError maps non-2xx cloud responses to their user-facing
// strings. Returns "" for success statuses.
func cloudStatusError(p schemas.Provider, status int, body []byte) string {
	switch {
	case status >= 200 && status <= 299:
		return ""
	case status == http.StatusUnauthorized:
		return fmt.Sprintf("Invalid %s API key. Update via Settings.", p.Display())
	case status == http.StatusTooManyRequests:
		return fmt.Sprintf("%s rate limit exceeded. Try again later.", p.Display())
	}
	snippet := string(body)
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	return fmt.Sprintf("%s API error: HTTP %d: %s", p.Display(), status, snippet)
}

func unmarshalErr(err error) error {
	if err == nil {
		return fmt.Errorf("empty completion")
	}
	return err
}
