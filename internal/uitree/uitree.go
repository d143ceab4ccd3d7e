// internal/uitree/uitree.go
package uitree

import (
	"github.com/xkilldash9x/deskhand/api/schemas"
)

// Traversal caps. Accessibility trees are effectively unbounded; the model
// only needs the visible top of the hierarchy.
const (
	MaxDepth    = 5
	MaxChildren = 20
)

// Element is one node of the platform accessibility hierarchy. Real
// implementations wrap UIA / AX / AT-SPI elements.
type Element interface {
	Name() string
	Type() string
	ClassName() string
	Bounds() schemas.Rect
	Enabled() bool
	Children() []Element
}

// Provider yields the current desktop accessibility tree.
type Provider interface {
	// Initialize acquires the enumeration subsystem. A failure here is fatal
	// for the host (exit 1).
	Initialize() error
	// Root returns the desktop root element.
	Root() (Element, error)
}

// Build walks the hierarchy from root, clamping depth and fan-out.
func Build(root Element) *schemas.UINode {
	if root == nil {
		return nil
	}
	return build(root, 0)
}

func build(el Element, depth int) *schemas.UINode {
	node := &schemas.UINode{
		Name:      el.Name(),
		Type:      el.Type(),
		ClassName: el.ClassName(),
		Bounds:    el.Bounds(),
		Enabled:   el.Enabled(),
	}

	if depth >= MaxDepth {
		return node
	}

	children := el.Children()
	if len(children) > MaxChildren {
		children = children[:MaxChildren]
	}
	for _, child := range children {
		if child == nil {
			continue
		}
		node.Children = append(node.Children, *build(child, depth+1))
	}
	return node
}
