package task

import "context"

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, boardID, taskType, status string, limit, offset int) ([]*Task, int, error)
	// Apply performs a partial update and returns the task as persisted.
	// A History field is appended to the status log, never merged.
	Apply(ctx context.Context, id string, upd Update) (*Task, error)
	Delete(ctx context.Context, id string) error
}
