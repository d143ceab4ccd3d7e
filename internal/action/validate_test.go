// internal/action/validate_test.go
package action_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/action"
)

func mk(tag string, params map[string]any) schemas.Action {
	return schemas.Action{Action: tag, Params: params}
}

func TestValidate_Click(t *testing.T) {
	cases := []struct {
		name   string
		params map[string]any
		ok     bool
	}{
		{"valid", map[string]any{"x": float64(100), "y": float64(200)}, true},
		{"origin boundary", map[string]any{"x": float64(0), "y": float64(0)}, true},
		{"upper boundary", map[string]any{"x": float64(10000), "y": float64(10000)}, true},
		{"negative x", map[string]any{"x": float64(-1), "y": float64(5)}, false},
		{"x above cap", map[string]any{"x": float64(10001), "y": float64(5)}, false},
		{"missing y", map[string]any{"x": float64(5)}, false},
		{"non-numeric x", map[string]any{"x": "5", "y": float64(5)}, false},
		{"valid button", map[string]any{"x": float64(1), "y": float64(1), "button": "right"}, true},
		{"bad button", map[string]any{"x": float64(1), "y": float64(1), "button": "back"}, false},
		{"double flag", map[string]any{"x": float64(1), "y": float64(1), "double": true}, true},
		{"double not bool", map[string]any{"x": float64(1), "y": float64(1), "double": "yes"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := action.Validate(mk("click", tc.params))
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Type(t *testing.T) {
	assert.NoError(t, action.Validate(mk("type", map[string]any{"text": "a"})))
	assert.NoError(t, action.Validate(mk("type", map[string]any{"text": strings.Repeat("x", 10000)})))
	assert.Error(t, action.Validate(mk("type", map[string]any{"text": ""})))
	assert.Error(t, action.Validate(mk("type", map[string]any{"text": strings.Repeat("x", 10001)})))
	assert.Error(t, action.Validate(mk("type", map[string]any{})))
	assert.Error(t, action.Validate(mk("type", map[string]any{"text": float64(7)})))
}

func TestValidate_Scroll(t *testing.T) {
	assert.NoError(t, action.Validate(mk("scroll", map[string]any{"delta": float64(-3)})))
	assert.NoError(t, action.Validate(mk("scroll", map[string]any{"delta": float64(3), "x": float64(10), "y": float64(20)})))
	assert.Error(t, action.Validate(mk("scroll", map[string]any{})))
	assert.Error(t, action.Validate(mk("scroll", map[string]any{"delta": "down"})))
	assert.Error(t, action.Validate(mk("scroll", map[string]any{"delta": float64(1), "x": "left"})))
}

func TestValidate_PressKeys(t *testing.T) {
	assert.NoError(t, action.Validate(mk("press_keys", map[string]any{"keys": []any{"ctrl", "s"}})))
	assert.Error(t, action.Validate(mk("press_keys", map[string]any{"keys": []any{}})))
	assert.Error(t, action.Validate(mk("press_keys", map[string]any{"keys": []any{"ctrl", float64(1)}})))
	assert.Error(t, action.Validate(mk("press_keys", map[string]any{})))
}

func TestValidate_Wait(t *testing.T) {
	assert.NoError(t, action.Validate(mk("wait", map[string]any{"ms": float64(0)})))
	assert.NoError(t, action.Validate(mk("wait", map[string]any{"ms": float64(30000)})))
	assert.Error(t, action.Validate(mk("wait", map[string]any{"ms": float64(-1)})))
	assert.Error(t, action.Validate(mk("wait", map[string]any{"ms": float64(30001)})))
	assert.Error(t, action.Validate(mk("wait", map[string]any{})))
}

func TestValidate_UnknownTag(t *testing.T) {
	err := action.Validate(mk("teleport", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, action.ErrUnknownType)
}

func TestFromMap(t *testing.T) {
	a, ok := action.FromMap(map[string]any{
		"action":     "wait",
		"params":     map[string]any{"ms": float64(100)},
		"confidence": 0.9,
	})
	require.True(t, ok)
	assert.Equal(t, "wait", a.Action)
	require.NotNil(t, a.Confidence)
	assert.Equal(t, 0.9, *a.Confidence)

	_, ok = action.FromMap(map[string]any{"params": map[string]any{}})
	assert.False(t, ok, "an object without an action tag is not an action")
}
