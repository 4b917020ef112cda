package board

import (
	"context"
	"fmt"

	"github.com/jbapex/planeje/internal/task"
	"github.com/jbapex/planeje/pkg/cerr"
)

// Mover relocates a task onto another board. It backs the automation
// engine's move_task action.
type Mover struct {
	boards Repository
	tasks  task.Repository
}

func NewMover(boards Repository, tasks task.Repository) *Mover {
	return &Mover{
		boards: boards,
		tasks:  tasks,
	}
}

// MoveTask validates the destination board exists, then repoints the task.
func (m *Mover) MoveTask(ctx context.Context, taskID, destination string) error {
	b, err := m.boards.Get(ctx, destination)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return cerr.NewError(cerr.NotFound, fmt.Sprintf("destination board %q not found", destination), err)
		}
		return err
	}
	if _, err := m.tasks.Apply(ctx, taskID, task.Update{BoardID: &b.ID}); err != nil {
		return err
	}
	return nil
}
