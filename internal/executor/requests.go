// internal/executor/requests.go
package executor

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
	"github.com/xkilldash9x/deskhand/internal/screen"
	"github.com/xkilldash9x/deskhand/internal/uitree"
)

// param reads a request parameter, accepting both the nested params object
// and top-level placement. The browser side has used both shapes.
func param(msg map[string]any, key string) (any, bool) {
	if params, ok := msg["params"].(map[string]any); ok {
		if v, ok := params[key]; ok {
			return v, true
		}
	}
	v, ok := msg[key]
	return v, ok
}

func stringParam(msg map[string]any, key string) string {
	v, _ := param(msg, key)
	s, _ := v.(string)
	return s
}

// RequestActions submits an AI request to the async manager and returns the
// request id immediately. The submitted closure captures the screen and UI
// tree (failures degrade to empty artifacts) and then calls the provider.
func (e *Executor) RequestActions(msg map[string]any) schemas.Result {
	userRequest := stringParam(msg, "user_request")
	if userRequest == "" {
		return schemas.Fail("Missing user_request")
	}
	if len(userRequest) > e.limits.MaxRequestChars {
		return schemas.Failf("user_request too long (max %d chars)", e.limits.MaxRequestChars)
	}

	prov := schemas.Provider(stringParam(msg, "provider"))
	if !prov.Valid() {
		return schemas.Failf("Invalid provider: %s", prov)
	}

	if !e.limiter.Allow() {
		return schemas.Fail("Too many AI requests. Try again later.")
	}

	id := e.async.Submit(func() schemas.Result {
		screenshot := e.captureForRequest()
		tree := e.treeForRequest()
		return e.router.GetActions(prov, screenshot, tree, userRequest)
	})

	e.logger.Info("AI request submitted",
		zap.String("request_id", id),
		zap.String("provider", string(prov)))
	return schemas.Result{"success": true, "request_id": id, "status": string(schemas.StatusQueued)}
}

// captureForRequest grabs and encodes the screen, degrading to an empty
// screenshot when capture fails so the provider call still proceeds.
func (e *Executor) captureForRequest() string {
	frame, err := e.capturer.Capture()
	if err != nil {
		e.logger.Warn("capture failed for AI request, sending empty screenshot", zap.Error(err))
		return ""
	}
	encoded, err := screen.EncodePNG(frame)
	if err != nil {
		e.logger.Warn("png encode failed for AI request, sending empty screenshot", zap.Error(err))
		return ""
	}
	return encoded
}

// treeForRequest enumerates the UI tree, degrading to nil on failure.
func (e *Executor) treeForRequest() *schemas.UINode {
	root, err := e.tree.Root()
	if err != nil {
		e.logger.Warn("ui tree enumeration failed for AI request", zap.Error(err))
		return nil
	}
	return uitree.Build(root)
}

// PollRequest passes a poll through to the async manager.
func (e *Executor) PollRequest(msg map[string]any) schemas.Result {
	id := stringParam(msg, "request_id")
	if id == "" {
		return schemas.Fail("Missing request_id")
	}
	return e.async.Poll(id)
}

// CancelRequest passes a cancel through to the async manager.
func (e *Executor) CancelRequest(msg map[string]any) schemas.Result {
	id := stringParam(msg, "request_id")
	if id == "" {
		return schemas.Fail("Missing request_id")
	}
	return e.async.Cancel(id)
}

// StoreApiKey persists a cloud provider's API key.
func (e *Executor) StoreApiKey(msg map[string]any) schemas.Result {
	prov := schemas.Provider(stringParam(msg, "provider"))
	if !prov.Cloud() {
		return schemas.Failf("Invalid provider: %s", prov)
	}

	apiKey := stringParam(msg, "api_key")
	if apiKey == "" {
		return schemas.Fail("Missing api_key")
	}
	if len(apiKey) > e.limits.MaxKeyChars {
		return schemas.Failf("API key too long (max %d chars)", e.limits.MaxKeyChars)
	}

	if err := e.creds.StoreKey(prov, apiKey); err != nil {
		return schemas.Fail("Failed to store API key")
	}
	return schemas.OK()
}

// DeleteApiKey removes a cloud provider's API key. Deleting an absent key
// succeeds.
func (e *Executor) DeleteApiKey(msg map[string]any) schemas.Result {
	prov := schemas.Provider(stringParam(msg, "provider"))
	if !prov.Cloud() {
		return schemas.Failf("Invalid provider: %s", prov)
	}

	if !e.creds.DeleteKey(prov) {
		return schemas.Fail("Failed to delete API key")
	}
	return schemas.OK()
}
