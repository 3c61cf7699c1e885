// Package render turns conversation turns into display trees by dispatching
// structured-response elements through the extension registry.
package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/capitalize-ai/extension-chat/internal/extension"
	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
	"github.com/capitalize-ai/extension-chat/pkg/metrics"
)

// Dispatcher maps turns to nodes. It holds no per-turn state; rendering the
// same turn twice yields the same tree.
type Dispatcher struct {
	registry *extension.Registry
	log      *logger.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *extension.Registry, log *logger.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log}
}

// Turn renders one conversation turn. User turns become a single markdown
// node; assistant turns render element by element. A nil or empty structured
// response renders nothing.
func (d *Dispatcher) Turn(turn model.Turn, interact extension.InteractFunc) []extension.Node {
	if turn.Role == model.RoleUser {
		return []extension.Node{extension.Markdown(turn.Text)}
	}
	if turn.Structured == nil {
		return nil
	}

	var nodes []extension.Node
	for _, el := range turn.Structured.Response {
		if node, ok := d.element(el, interact); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// element renders a single response element. Elements that cannot render yet
// (empty text, a tag still streaming in) are skipped rather than shown as
// errors; only a complete tag that misses the registry gets a placeholder.
func (d *Dispatcher) element(el model.Element, interact extension.InteractFunc) (extension.Node, bool) {
	if el.IsText() {
		if el.TextContent() == "" {
			return extension.Node{}, false
		}
		return extension.Markdown(el.TextContent()), true
	}

	name := el.Extension()
	if name == "" {
		// A tagged element whose tag has not streamed in yet.
		return extension.Node{}, false
	}

	desc, ok := d.registry.Lookup(name)
	if !ok {
		metrics.UnknownExtensionsTotal.WithLabelValues(name).Inc()
		d.log.Debug("unknown extension tag", zap.String("extension", name))
		return extension.Placeholder(fmt.Sprintf("unknown extension: %s", name)), true
	}

	return d.safeRender(desc, extension.Props(el.Payload()), interact), true
}

// safeRender isolates one extension's render failure from the rest of the
// turn.
func (d *Dispatcher) safeRender(desc extension.Descriptor, props extension.Props, interact extension.InteractFunc) (node extension.Node) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RenderErrorsTotal.WithLabelValues(desc.Name).Inc()
			d.log.Error("extension render panicked",
				zap.String("extension", desc.Name),
				zap.Any("panic", r))
			node = extension.ErrorNode(fmt.Sprintf("failed to render %s", desc.Name))
		}
	}()
	return desc.Render(props, interact)
}
