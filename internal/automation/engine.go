package automation

import (
	"context"
	"log/slog"

	"github.com/jbapex/planeje/internal/checklist"
	"github.com/jbapex/planeje/internal/eventbus"
	"github.com/jbapex/planeje/internal/task"
)

// RuleResult reports one matched rule's outcome. Rules fail independently:
// one rule's error never aborts the remaining matches.
type RuleResult struct {
	RuleID  string   `json:"rule_id"`
	Success bool     `json:"success"`
	Updates *Updates `json:"-"`
	Err     error    `json:"-"`
}

// Engine reacts to task lifecycle events by running matching automation
// rules, and guards status transitions behind required checklists. It holds
// no state of its own; stores own all data.
type Engine struct {
	tasks     task.Repository
	rules     Repository
	checklist *checklist.Service
	executor  *Executor
	bus       *eventbus.Bus
}

func NewEngine(tasks task.Repository, rules Repository, cl *checklist.Service, executor *Executor, bus *eventbus.Bus) *Engine {
	return &Engine{
		tasks:     tasks,
		rules:     rules,
		checklist: cl,
		executor:  executor,
		bus:       bus,
	}
}

// ProvisionAndGate ensures the destination status's checklist exists on the
// task, then reports whether the transition may proceed. Store failures
// deny the transition.
func (e *Engine) ProvisionAndGate(ctx context.Context, taskID, taskType, targetStatus string) (checklist.GateResult, error) {
	return e.checklist.ProvisionAndGate(ctx, taskID, taskType, targetStatus)
}

// OnEvent runs every active automation rule matching the event, committing
// each rule's updates independently. A failure to load the rule list is
// fatal for the event; a failure inside one rule is isolated to its result.
func (e *Engine) OnEvent(ctx context.Context, taskID string, trigger TriggerType, ev EventData) ([]RuleResult, error) {
	active, err := e.rules.ListActive(ctx, trigger)
	if err != nil {
		return nil, err
	}

	matched := Match(trigger, ev, active)
	if len(matched) == 0 {
		return nil, nil
	}

	t, err := e.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	results := make([]RuleResult, 0, len(matched))
	for _, rule := range matched {
		res := e.applyRule(ctx, rule, t)
		if res.Success && res.Updates != nil {
			// Later rules see the committed state of earlier ones.
			if refreshed, err := e.tasks.Get(ctx, taskID); err == nil {
				t = refreshed
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// applyRule executes one rule's action list and commits whatever it
// produced. A move_task failure still commits the fields accumulated before
// it (fail-soft), but the rule is reported as failed.
func (e *Engine) applyRule(ctx context.Context, rule *Rule, t *task.Task) RuleResult {
	if err := rule.Validate(); err != nil {
		return RuleResult{RuleID: rule.ID, Err: err}
	}

	applied, applyErr := e.executor.Apply(ctx, rule.Actions, t)
	if applied.Changed {
		upd := task.Update{
			Status:      applied.Updates.Status,
			AssigneeIDs: applied.Updates.AssigneeIDs,
			History:     applied.History,
		}
		if _, err := e.tasks.Apply(ctx, t.ID, upd); err != nil {
			return RuleResult{RuleID: rule.ID, Updates: &applied.Updates, Err: err}
		}
		if e.bus != nil {
			meta := map[string]string{"rule_id": rule.ID}
			if applied.Updates.Status != nil {
				meta["new_status"] = *applied.Updates.Status
			}
			e.bus.PublishNew(eventbus.TypeAutomationApplied, t.ID, meta)
		}
	}
	if applyErr != nil {
		return RuleResult{RuleID: rule.ID, Updates: &applied.Updates, Err: applyErr}
	}

	slog.DebugContext(ctx, "automation rule applied",
		"rule_id", rule.ID,
		"task_id", t.ID,
		"changed", applied.Changed,
	)
	return RuleResult{RuleID: rule.ID, Success: true, Updates: &applied.Updates}
}
