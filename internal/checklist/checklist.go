// Package checklist provisions mandatory subtasks and gates status
// transitions on their completion.
package checklist

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jbapex/planeje/internal/subtask"
	"github.com/jbapex/planeje/internal/workflowrule"
)

// GateResult reports whether a transition may proceed and which required
// item titles are still unsatisfied.
type GateResult struct {
	Allowed bool     `json:"allowed"`
	Missing []string `json:"missing"`
}

type Service struct {
	subtasks subtask.Repository
	rules    workflowrule.Repository
}

func NewService(subtasks subtask.Repository, rules workflowrule.Repository) *Service {
	return &Service{
		subtasks: subtasks,
		rules:    rules,
	}
}

// Ensure creates the required subtasks declared for (taskType, status) that
// the task does not already carry, matching by title. It never deletes and
// is idempotent: once every declared item exists, repeated calls are no-ops.
// The returned slice is the union of pre-existing and newly created subtasks.
func (s *Service) Ensure(ctx context.Context, taskID, taskType, status string) ([]*subtask.Subtask, error) {
	subs, _, err := s.ensure(ctx, taskID, taskType, status)
	return subs, err
}

func (s *Service) ensure(ctx context.Context, taskID, taskType, status string) ([]*subtask.Subtask, *workflowrule.WorkflowRule, error) {
	existing, err := s.subtasks.ListByTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if taskType == "" || status == "" {
		return existing, nil, nil
	}

	rule, err := s.rules.Get(ctx, taskType, status)
	if err != nil {
		return nil, nil, err
	}
	if rule == nil {
		return existing, nil, nil
	}

	present := make(map[string]struct{}, len(existing))
	for _, sub := range existing {
		present[sub.Title] = struct{}{}
	}

	var missing []*subtask.Subtask
	now := time.Now()
	for _, item := range rule.Items {
		if _, ok := present[item.Title]; ok {
			continue
		}
		missing = append(missing, &subtask.Subtask{
			ID:        ulid.Make().String(),
			TaskID:    taskID,
			Title:     item.Title,
			Kind:      item.Kind,
			Required:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if len(missing) == 0 {
		return existing, rule, nil
	}

	created, err := s.subtasks.InsertMany(ctx, missing)
	if err != nil {
		return nil, nil, err
	}
	return append(existing, created...), rule, nil
}

// Evaluate checks the destination status's required items against the task's
// subtasks. An item counts as satisfied when a subtask with the same title
// exists and is complete under the item's kind.
func Evaluate(items []workflowrule.RequiredItem, subs []*subtask.Subtask) GateResult {
	byTitle := make(map[string]*subtask.Subtask, len(subs))
	for _, sub := range subs {
		byTitle[sub.Title] = sub
	}

	missing := []string{}
	for _, item := range items {
		sub, ok := byTitle[item.Title]
		if !ok || !satisfied(item.Kind, sub) {
			missing = append(missing, item.Title)
		}
	}
	return GateResult{
		Allowed: len(missing) == 0,
		Missing: missing,
	}
}

func satisfied(kind subtask.Kind, sub *subtask.Subtask) bool {
	if kind == subtask.KindText {
		return strings.TrimSpace(sub.Content) != ""
	}
	return sub.Done
}

// ProvisionAndGate ensures the destination status's checklist exists, then
// evaluates it. Store failures deny the transition: the gate fails closed,
// never open.
func (s *Service) ProvisionAndGate(ctx context.Context, taskID, taskType, targetStatus string) (GateResult, error) {
	subs, rule, err := s.ensure(ctx, taskID, taskType, targetStatus)
	if err != nil {
		return GateResult{}, err
	}
	if rule == nil {
		return GateResult{Allowed: true, Missing: []string{}}, nil
	}
	return Evaluate(rule.Items, subs), nil
}
