package workflowrule

import (
	"time"

	"github.com/jbapex/planeje/internal/subtask"
)

// RequiredItem declares one checklist item a task must carry (and satisfy)
// before entering the rule's status.
type RequiredItem struct {
	Title string       `yaml:"title" json:"title"`
	Kind  subtask.Kind `yaml:"kind" json:"kind"`
}

// WorkflowRule is the mandatory checklist for tasks of TaskType entering
// Status. At most one rule exists per (task_type, status) pair.
type WorkflowRule struct {
	TaskType  string         `yaml:"task_type" json:"task_type"`
	Status    string         `yaml:"status" json:"status"`
	Items     []RequiredItem `yaml:"items" json:"items"`
	CreatedAt time.Time      `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time      `yaml:"updated_at" json:"updated_at"`
}
