package models

// ExecutionContext carries the data of one workflow execution into a node.
type ExecutionContext struct {
	ID          string                `json:"id"`
	WorkflowID  string                `json:"workflow_id,omitempty"`
	NodeResults map[string]NodeResult `json:"node_results,omitempty"`
	Variables   map[string]any        `json:"variables,omitempty"`
	Metadata    map[string]any        `json:"metadata,omitempty"`
}
