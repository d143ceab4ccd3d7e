// internal/provider/payload.go
package provider

import (
	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/config"
)

// systemPrompt defines the action schema for every provider. The model must
// reply with a bare JSON array; the parse pipeline tolerates fenced output.
const systemPrompt = `You are a desktop automation assistant. Analyze the screenshot and UI tree, then return a JSON array of actions to accomplish the user's request.

Available actions:
- click: {"action": "click", "params": {"x": 100, "y": 200}, "confidence": 0.9}
- type: {"action": "type", "params": {"text": "hello"}, "confidence": 0.9}
- press_keys: {"action": "press_keys", "params": {"keys": ["ctrl", "s"]}, "confidence": 0.9}
- scroll: {"action": "scroll", "params": {"delta": -3, "x": 500, "y": 400}, "confidence": 0.9}
- wait: {"action": "wait", "params": {"ms": 1000}, "confidence": 0.9}

UI TREE USAGE:
- Search for elements by name/type in the UI tree
- Use element 'bounds' {x, y, width, height} to calculate click coordinates
- Click center of element: x + width/2, y + height/2

Return ONLY a JSON array of actions. No explanations or other text.`

// --- OpenAI chat completions ---

type openAIPayload struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func buildOpenAIPayload(cfg config.OpenAIConfig, screenshot string, uiTree *schemas.UINode, request string) openAIPayload {
	return openAIPayload{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []openAIContentPart{
				{Type: "text", Text: "User request: " + request + "\n\nUI Tree: " + dumpTree(uiTree, true)},
				{Type: "image_url", ImageURL: &openAIImageURL{URL: "data:image/png;base64," + screenshot}},
			}},
		},
	}
}

// --- Anthropic messages ---

type anthropicPayload struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string               `json:"role"`
	Content []anthropicContent   `json:"content"`
}

type anthropicContent struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func buildAnthropicPayload(cfg config.AnthropicConfig, screenshot string, uiTree *schemas.UINode, request string) anthropicPayload {
	return anthropicPayload{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: []anthropicContent{
				{Type: "image", Source: &anthropicSource{Type: "base64", MediaType: "image/png", Data: screenshot}},
				{Type: "text", Text: systemPrompt + "\n\nUser request: " + request + "\n\nUI Tree: " + dumpTree(uiTree, false)},
			}},
		},
	}
}

// --- Ollama generate ---

type ollamaPayload struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func buildOllamaPayload(cfg config.OllamaConfig, screenshot string, uiTree *schemas.UINode, request string) ollamaPayload {
	p := ollamaPayload{
		Model:  cfg.Model,
		Prompt: systemPrompt + "\n\nUser request: " + request + "\n\nUI Tree:\n" + dumpTree(uiTree, true),
		Stream: false,
	}
	if screenshot != "" {
		p.Images = []string{screenshot}
	}
	return p
}

// dumpTree serializes the UI tree, optionally indented. A nil tree becomes
// an empty object so prompts stay well-formed when enumeration failed.
func dumpTree(tree *schemas.UINode, indent bool) string {
	if tree == nil {
		return "{}"
	}
	var (
		raw []byte
		err error
	)
	if indent {
		raw, err = json.MarshalIndent(tree, "", "  ")
	} else {
		raw, err = json.Marshal(tree)
	}
	if err != nil {
		return "{}"
	}
	return string(raw)
}
