// internal/provider/probe.go
package provider

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
)

// visionModels are the loose substrings that mark an installed Ollama model
// as screenshot-capable.
var visionModels = []string{"llava", "cogagent", "bakllava", "moondream"}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// probeResult is the outcome of one /api/tags round trip.
type probeResult struct {
	available bool
	models    []string
	hasVision bool
	errText   string
}

// CheckLocalLLM probes the local Ollama daemon and reports which models are
// installed. Concurrent callers share one probe via singleflight.
func (r *Router) CheckLocalLLM() schemas.Result {
	p := r.probe()
	if !p.available {
		return schemas.Result{"success": true, "available": false, "error": p.errText}
	}
	return schemas.Result{
		"success":          true,
		"available":        true,
		"models":           p.models,
		"has_vision_model": p.hasVision,
	}
}

// OllamaAvailable reports whether the local daemon answered the probe.
func (r *Router) OllamaAvailable() bool {
	return r.probe().available
}

// ProviderStatus reports key presence for cloud providers and the live
// Ollama probe result.
func (r *Router) ProviderStatus() schemas.Result {
	return schemas.Result{
		"success": true,
		"providers": map[string]any{
			"openai": map[string]any{
				"has_key": r.creds.HasKey(schemas.ProviderOpenAI),
				"type":    "cloud",
			},
			"anthropic": map[string]any{
				"has_key": r.creds.HasKey(schemas.ProviderAnthropic),
				"type":    "cloud",
			},
			"ollama": map[string]any{
				"has_key":   false,
				"type":      "local",
				"available": r.OllamaAvailable(),
			},
		},
	}
}

func (r *Router) probe() probeResult {
	v, _, _ := r.probeGroup.Do("ollama-tags", func() (any, error) {
		return r.probeOnce(), nil
	})
	return v.(probeResult)
}

func (r *Router) probeOnce() probeResult {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Ollama.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.Ollama.BaseURL+"/api/tags", nil)
	if err != nil {
		return probeResult{errText: "Ollama probe failed: " + err.Error()}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("ollama probe failed", zap.Error(err))
		return probeResult{errText: "Ollama not reachable: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return probeResult{errText: "Ollama probe failed: HTTP " + resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return probeResult{errText: "Ollama probe failed: " + err.Error()}
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return probeResult{errText: "Ollama probe returned invalid JSON"}
	}

	p := probeResult{available: true, models: make([]string, 0, len(tags.Models))}
	for _, m := range tags.Models {
		p.models = append(p.models, m.Name)
		lower := strings.ToLower(m.Name)
		for _, marker := range visionModels {
			if strings.Contains(lower, marker) {
				p.hasVision = true
				break
			}
		}
	}
	return p
}
