// internal/executor/actions.go
package executor

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/action"
)

// ExecuteAction validates one action object and injects it. The action
// object arrives as the message's params: {"action": "click", "params": {...}}.
func (e *Executor) ExecuteAction(msg map[string]any) schemas.Result {
	obj, ok := msg["params"].(map[string]any)
	if !ok {
		return schemas.Fail("Missing params")
	}
	return e.executeOne(obj)
}

// ExecuteActions runs a batch in array order, halting after the first
// failed action. The top-level success stays true even when an individual
// action failed; callers inspect results[].
func (e *Executor) ExecuteActions(msg map[string]any) schemas.Result {
	params, _ := msg["params"].(map[string]any)
	rawActions, ok := params["actions"].([]any)
	if !ok {
		return schemas.Fail("Missing actions array")
	}

	results := make([]schemas.Result, 0, len(rawActions))
	for _, raw := range rawActions {
		obj, ok := raw.(map[string]any)
		if !ok {
			results = append(results, schemas.Fail("Action must be an object"))
			break
		}
		result := e.executeOne(obj)
		results = append(results, result)
		if !result.Succeeded() {
			break
		}
	}

	return schemas.Result{"success": true, "results": results}
}

func (e *Executor) executeOne(obj map[string]any) schemas.Result {
	if !e.initialized {
		return schemas.Fail("Action executor not initialized")
	}

	a, ok := action.FromMap(obj)
	if !ok {
		return schemas.Fail("Missing 'action' field")
	}

	e.logger.Debug("executing action", zap.String("type", a.Action))

	switch schemas.ActionType(a.Action) {
	case schemas.ActionClick:
		return e.executeClick(a)
	case schemas.ActionTypeText:
		return e.executeType(a)
	case schemas.ActionScroll:
		return e.executeScroll(a)
	case schemas.ActionPressKeys:
		return e.executePressKeys(a)
	case schemas.ActionWait:
		return e.executeWait(a)
	}
	return schemas.Failf("Unknown action type: %s", a.Action)
}

func (e *Executor) executeClick(a schemas.Action) schemas.Result {
	x, okX := a.Number("x")
	y, okY := a.Number("y")
	if !okX || !okY {
		return schemas.Fail("Missing x or y coordinates")
	}

	width, height := e.capturer.Dimensions()
	if x < 0 || y < 0 || int(x) >= width || int(y) >= height {
		return schemas.Fail("Coordinates out of screen bounds")
	}

	button := schemas.ButtonLeft
	if s, ok := a.String("button"); ok {
		button = schemas.ParseMouseButton(s)
	}

	e.input.Click(int(x), int(y), button, a.Bool("double"))
	return schemas.Result{"success": true, "action": "click"}
}

func (e *Executor) executeType(a schemas.Action) schemas.Result {
	text, ok := a.String("text")
	if !ok {
		return schemas.Fail("Missing text parameter")
	}
	if len(text) > action.MaxTextLen {
		return schemas.Failf("Text too long (max %d chars)", action.MaxTextLen)
	}

	e.input.TypeText(text)
	return schemas.Result{"success": true, "action": "type"}
}

func (e *Executor) executeScroll(a schemas.Action) schemas.Result {
	delta, ok := a.Number("delta")
	if !ok {
		return schemas.Fail("Missing delta parameter")
	}

	x, okX := a.Number("x")
	y, okY := a.Number("y")
	hasPos := okX && okY && x >= 0 && y >= 0

	e.input.Scroll(int(delta), int(x), int(y), hasPos)
	return schemas.Result{"success": true, "action": "scroll"}
}

func (e *Executor) executePressKeys(a schemas.Action) schemas.Result {
	keys, ok := a.Strings("keys")
	if !ok || len(keys) == 0 {
		return schemas.Fail("Missing keys parameter")
	}

	e.input.PressKeys(keys)
	return schemas.Result{"success": true, "action": "press_keys"}
}

func (e *Executor) executeWait(a schemas.Action) schemas.Result {
	ms, ok := a.Number("ms")
	if !ok {
		return schemas.Fail("Missing ms parameter")
	}
	if ms < 0 || ms > action.MaxWaitMs {
		return schemas.Fail("Wait duration must be 0-30000ms")
	}

	e.input.Wait(int(ms))
	return schemas.Result{"success": true, "action": "wait"}
}
