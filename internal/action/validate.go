// internal/action/validate.go
package action

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/deskhand/api/schemas"
)

// Parameter windows shared by the validator and the provider pipeline.
const (
	MaxCoordinate = 10000
	MaxTextLen    = 10000
	MaxWaitMs     = 30000
)

// ErrUnknownType marks an unrecognized action tag. Provider batches drop
// such actions silently; direct dispatch reports them.
var ErrUnknownType = errors.New("unknown action type")

// FromMap converts a decoded wire object into an Action. Only the shape is
// checked here; Validate applies the per-tag rules.
func FromMap(m map[string]any) (schemas.Action, bool) {
	tag, ok := m["action"].(string)
	if !ok {
		return schemas.Action{}, false
	}
	a := schemas.Action{Action: tag}
	if params, ok := m["params"].(map[string]any); ok {
		a.Params = params
	}
	if c, ok := m["confidence"].(float64); ok {
		a.Confidence = &c
	}
	return a, true
}

// Validate applies the per-tag parameter rules. The screen-bounds
// cross-check for clicks happens at execution time, where the current
// dimensions are known.
func Validate(a schemas.Action) error {
	switch schemas.ActionType(a.Action) {
	case schemas.ActionClick:
		return validateClick(a)
	case schemas.ActionTypeText:
		return validateType(a)
	case schemas.ActionScroll:
		return validateScroll(a)
	case schemas.ActionPressKeys:
		return validatePressKeys(a)
	case schemas.ActionWait:
		return validateWait(a)
	}
	return fmt.Errorf("%w: %s", ErrUnknownType, a.Action)
}

func validateClick(a schemas.Action) error {
	x, okX := a.Number("x")
	y, okY := a.Number("y")
	if !okX || !okY {
		return errors.New("click requires numeric x and y")
	}
	if x < 0 || x > MaxCoordinate || y < 0 || y > MaxCoordinate {
		return fmt.Errorf("click coordinates out of range [0, %d]", MaxCoordinate)
	}
	if raw, present := a.Params["button"]; present {
		s, ok := raw.(string)
		if !ok || (s != "left" && s != "right" && s != "middle") {
			return errors.New("click button must be left, right or middle")
		}
	}
	if raw, present := a.Params["double"]; present {
		if _, ok := raw.(bool); !ok {
			return errors.New("click double must be a boolean")
		}
	}
	return nil
}

func validateType(a schemas.Action) error {
	text, ok := a.String("text")
	if !ok {
		return errors.New("type requires a text string")
	}
	if len(text) == 0 {
		return errors.New("type text must not be empty")
	}
	if len(text) > MaxTextLen {
		return fmt.Errorf("type text too long (max %d chars)", MaxTextLen)
	}
	return nil
}

func validateScroll(a schemas.Action) error {
	if _, ok := a.Number("delta"); !ok {
		return errors.New("scroll requires a numeric delta")
	}
	for _, key := range []string{"x", "y"} {
		if _, present := a.Params[key]; present {
			if _, ok := a.Number(key); !ok {
				return fmt.Errorf("scroll %s must be numeric", key)
			}
		}
	}
	return nil
}

func validatePressKeys(a schemas.Action) error {
	keys, ok := a.Strings("keys")
	if !ok {
		return errors.New("press_keys requires an array of strings")
	}
	if len(keys) == 0 {
		return errors.New("press_keys keys must not be empty")
	}
	return nil
}

func validateWait(a schemas.Action) error {
	ms, ok := a.Number("ms")
	if !ok {
		return errors.New("wait requires a numeric ms")
	}
	if ms < 0 || ms > MaxWaitMs {
		return fmt.Errorf("wait ms out of range [0, %d]", MaxWaitMs)
	}
	return nil
}
