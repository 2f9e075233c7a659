package transform

import (
	"errors"
	"fmt"
	"log/slog"

	"frontmatter-transform/internal/directive"
	"frontmatter-transform/internal/plan"
	"frontmatter-transform/internal/schema"
)

// Executor runs the transformers of a processing order phase by phase.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
}

// NewExecutor returns an executor using registry. A nil logger discards.
func NewExecutor(registry *Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Executor{registry: registry, logger: logger}
}

// Run applies every present node of order to data and returns the result.
// Virtual nodes are skipped. The first failure stops the remaining phases and
// is returned as a *directive.Error.
func (e *Executor) Run(order *plan.ProcessingOrder, data any, root *schema.Node) (any, error) {
	if order.IsEmpty() {
		return data, nil
	}

	for _, phase := range order.Phases {
		for _, node := range phase.Nodes {
			if !node.Present {
				e.logger.Debug("skipping virtual directive", "directive", node.Kind.String())
				continue
			}

			t, ok := e.registry.Lookup(node.Kind)
			if !ok {
				return nil, &directive.Error{
					Kind:      directive.ErrorMissingDependency,
					Directive: node.Kind,
					Err:       fmt.Errorf("no transformer registered for %s", node.Kind),
				}
			}

			out, err := t.Apply(data, root)
			if err != nil {
				return nil, wrapFailure(node, err)
			}

			e.logger.Debug("applied directive",
				"directive", node.Kind.String(),
				"phase", phase.Priority,
				"schema_path", node.SchemaPath,
			)

			data = out
		}
	}

	return data, nil
}

func wrapFailure(node plan.Node, err error) error {
	var derr *directive.Error
	if errors.As(err, &derr) {
		return err
	}

	return directive.ProcessingFailed(node.Kind, node.SchemaPath, err)
}
