package subtask

import "context"

type Repository interface {
	ListByTask(ctx context.Context, taskID string) ([]*Subtask, error)
	Get(ctx context.Context, taskID, id string) (*Subtask, error)
	InsertMany(ctx context.Context, records []*Subtask) ([]*Subtask, error)
	Update(ctx context.Context, s *Subtask) error
	Delete(ctx context.Context, taskID, id string) error
}
