package workflowrule

import "context"

type Repository interface {
	// Get returns the rule for (taskType, status), or nil when none exists.
	Get(ctx context.Context, taskType, status string) (*WorkflowRule, error)
	List(ctx context.Context) ([]*WorkflowRule, error)
	// Upsert replaces any existing rule for the same (task_type, status) key.
	Upsert(ctx context.Context, rule *WorkflowRule) error
	Delete(ctx context.Context, taskType, status string) error
}
