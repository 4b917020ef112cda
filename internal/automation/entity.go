package automation

import (
	"time"
)

type TriggerType string

const (
	TriggerStatusChange TriggerType = "status_change"
	TriggerTaskCreated  TriggerType = "task_created"
)

// TriggerConfig narrows status_change triggers. An empty list is a wildcard.
type TriggerConfig struct {
	FromStatus []string `yaml:"from_status,omitempty" json:"from_status,omitempty"`
	ToStatus   []string `yaml:"to_status,omitempty" json:"to_status,omitempty"`
}

// Rule is an operator-authored automation: a trigger plus an ordered action
// list. Every active rule matching an event fires, each as its own update.
type Rule struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	TriggerType TriggerType   `yaml:"trigger_type" json:"trigger_type"`
	Trigger     TriggerConfig `yaml:"trigger,omitempty" json:"trigger"`
	Actions     Actions       `yaml:"actions" json:"actions"`
	Active      bool          `yaml:"active" json:"active"`
	CreatedAt   time.Time     `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `yaml:"updated_at" json:"updated_at"`
}

// Validate rejects rules the executor cannot run. Invalid rules are skipped
// and reported per event, they never abort a batch.
func (r *Rule) Validate() error {
	switch r.TriggerType {
	case TriggerStatusChange, TriggerTaskCreated:
	default:
		return newValidationError("unknown trigger type %q", string(r.TriggerType))
	}
	if len(r.Actions) == 0 {
		return newValidationError("rule has no actions")
	}
	for i, a := range r.Actions {
		if err := validateAction(a); err != nil {
			return newValidationError("action %d: %v", i, err)
		}
	}
	return nil
}
