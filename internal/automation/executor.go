package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/jbapex/planeje/internal/task"
	"github.com/jbapex/planeje/pkg/cerr"
)

// BoardMover is the external collaborator behind the move_task action.
type BoardMover interface {
	MoveTask(ctx context.Context, taskID, destination string) error
}

// Updates is the partial task write an action list produced. Nil fields are
// untouched.
type Updates struct {
	Status      *string
	AssigneeIDs *[]string
}

// ApplyResult carries the pending updates of one rule's action list. When
// Changed is true, History holds the audit entry to append alongside the
// commit.
type ApplyResult struct {
	Updates Updates
	Changed bool
	History *task.HistoryEntry
}

type Executor struct {
	mover BoardMover
}

func NewExecutor(mover BoardMover) *Executor {
	return &Executor{mover: mover}
}

// Apply runs the actions in declaration order against a working copy of the
// task's status and assignee set. A move_task failure aborts the remaining
// actions but the updates accumulated before it are still returned, so the
// caller can commit the partial result (fail-soft, not all-or-nothing).
func (e *Executor) Apply(ctx context.Context, actions Actions, t *task.Task) (ApplyResult, error) {
	status := t.Status
	var instrs []Instruction
	var moveErr error

	for _, action := range actions {
		switch action := action.(type) {
		case ChangeStatus:
			status = action.Status
		case SetAssignee:
			instrs = append(instrs, AddAssignees{IDs: action.AssigneeIDs})
		case RemoveAssignee:
			instrs = append(instrs, RemoveAssignees{IDs: action.AssigneeIDs})
		case ReassignPrevious:
			instrs = append(instrs, ReassignFromHistory{
				FromStatus: action.FromStatus,
				History:    t.StatusHistory,
			})
		case MoveTask:
			if e.mover == nil {
				moveErr = cerr.NewError(cerr.Unimplemented, "no board mover configured", nil)
			} else if err := e.mover.MoveTask(ctx, t.ID, action.Destination); err != nil {
				moveErr = cerr.NewError(cerr.FailedPrecondition,
					fmt.Sprintf("failed to move task to %q", action.Destination), err)
			}
		default:
			moveErr = newValidationError("unknown action %T", action)
		}
		if moveErr != nil {
			break
		}
	}

	reduced := ReduceAssignees(t.AssigneeIDs, instrs)
	statusChanged := status != t.Status

	result := ApplyResult{}
	if statusChanged {
		result.Updates.Status = &status
	}
	if reduced.Touched || reduced.Changed {
		ids := reduced.IDs
		if ids == nil {
			ids = []string{}
		}
		result.Updates.AssigneeIDs = &ids
	}
	result.Changed = statusChanged || reduced.Touched || reduced.Changed
	if result.Changed {
		result.History = &task.HistoryEntry{
			Status:      status,
			AssigneeIDs: reduced.IDs,
			ChangedAt:   time.Now(),
			Automated:   true,
		}
	}
	return result, moveErr
}
