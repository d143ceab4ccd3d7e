// internal/provider/parse.go
package provider

import (
	"strings"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/action"
)

// defaultConfidence is injected into actions the model returned without one.
const defaultConfidence = 0.7

// ParseActions runs the post-processing pipeline on a provider's text reply:
// trim, strip one layer of markdown fencing, parse as a JSON array, validate
// each element, inject default confidence. Unknown tags and invalid actions
// are dropped silently; an empty survivor set is a failure.
func ParseActions(responseText string) schemas.Result {
	text := stripFences(strings.TrimSpace(responseText))

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return schemas.Result{
			"success":      false,
			"error":        "AI did not return valid JSON",
			"raw_response": responseText,
		}
	}

	items, ok := decoded.([]any)
	if !ok {
		return schemas.Result{
			"success":      false,
			"error":        "AI response is not an array of actions",
			"raw_response": responseText,
		}
	}

	validated := make([]schemas.Action, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		a, ok := action.FromMap(obj)
		if !ok || !schemas.KnownActionType(a.Action) {
			continue
		}
		if err := action.Validate(a); err != nil {
			continue
		}
		if a.Confidence == nil {
			c := defaultConfidence
			a.Confidence = &c
		}
		validated = append(validated, a)
	}

	if len(validated) == 0 {
		return schemas.Result{
			"success":      false,
			"error":        "AI returned no valid actions",
			"raw_response": responseText,
		}
	}

	return schemas.Result{"success": true, "actions": validated}
}

// stripFences removes one layer of triple-backtick fencing: the opening
// fence line (with or without a language tag) and the last trailing fence.
// Already-bare JSON passes through untouched; double-wrapped fences leave
// one layer behind and fail the JSON parse, as specified.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
