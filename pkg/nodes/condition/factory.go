package condition

import (
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/protocol"
)

type Factory struct{}

func NewFactory() protocol.NodeFactory {
	return &Factory{}
}

func (f *Factory) Create(node *models.WorkflowNode) (protocol.NodeExecutor, error) {
	return NewConditionNode(node)
}

func (f *Factory) Type() models.NodeType {
	return models.NodeTypeCondition
}

func (f *Factory) Name() string {
	return "Condition"
}

func (f *Factory) Description() string {
	return "Evaluates a predicate against execution variables and routes to the true or false branch."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"field": map[string]any{
				"type":        "string",
				"description": "Dotted path into execution variables, e.g. 'lead.score'.",
			},
			"operator": map[string]any{
				"type": "string",
				"enum": []string{
					"equals", "not_equals",
					"greater_than", "less_than",
					"greater_than_or_equal", "less_than_or_equal",
					"contains", "not_contains",
					"starts_with", "ends_with",
					"is_empty", "is_not_empty",
				},
			},
			"value": map[string]any{
				"description": "Comparison value. Placeholders are resolved, so two variables can be compared.",
			},
		},
		"required": []string{"field", "operator"},
	}
}
