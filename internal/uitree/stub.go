// internal/uitree/stub.go
package uitree

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskhand/api/schemas"
)

// StaticElement is an in-memory Element, used by the stub provider and by
// tests that need deterministic trees.
type StaticElement struct {
	ElemName      string
	ElemType      string
	ElemClassName string
	ElemBounds    schemas.Rect
	ElemEnabled   bool
	ElemChildren  []Element
}

func (e *StaticElement) Name() string         { return e.ElemName }
func (e *StaticElement) Type() string         { return e.ElemType }
func (e *StaticElement) ClassName() string    { return e.ElemClassName }
func (e *StaticElement) Bounds() schemas.Rect { return e.ElemBounds }
func (e *StaticElement) Enabled() bool        { return e.ElemEnabled }
func (e *StaticElement) Children() []Element  { return e.ElemChildren }

// StubProvider serves a minimal single-node desktop tree when no platform
// enumerator is wired.
type StubProvider struct {
	width  int
	height int
	logger *zap.Logger
}

// NewStubProvider returns a stub whose desktop node spans the given screen.
func NewStubProvider(width, height int, logger *zap.Logger) *StubProvider {
	return &StubProvider{width: width, height: height, logger: logger.Named("uitree")}
}

func (p *StubProvider) Initialize() error {
	p.logger.Info("stub ui tree provider active")
	return nil
}

func (p *StubProvider) Root() (Element, error) {
	return &StaticElement{
		ElemName:    "Desktop",
		ElemType:    "Pane",
		ElemBounds:  schemas.Rect{Width: p.width, Height: p.height},
		ElemEnabled: true,
	}, nil
}
