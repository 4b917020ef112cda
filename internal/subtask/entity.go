package subtask

import (
	"strings"
	"time"
)

type Kind string

const (
	KindCheckbox Kind = "checkbox"
	KindText     Kind = "text"
)

// Subtask is a checklist item under a task. Required subtasks are provisioned
// from workflow rules and cannot be deleted; ad-hoc ones are user-created.
// Title is the matching key against rule-declared items within one task.
type Subtask struct {
	ID        string    `yaml:"id" json:"id"`
	TaskID    string    `yaml:"task_id" json:"task_id"`
	Title     string    `yaml:"title" json:"title"`
	Kind      Kind      `yaml:"kind" json:"kind"`
	Required  bool      `yaml:"required" json:"required"`
	Done      bool      `yaml:"done" json:"done"`
	Content   string    `yaml:"content,omitempty" json:"content,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// Completed reports checklist satisfaction. Checkbox items use the toggle;
// text items are complete once their content is non-blank.
func (s *Subtask) Completed() bool {
	if s.Kind == KindText {
		return strings.TrimSpace(s.Content) != ""
	}
	return s.Done
}
