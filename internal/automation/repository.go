package automation

import "context"

type Repository interface {
	Create(ctx context.Context, rule *Rule) error
	Get(ctx context.Context, id string) (*Rule, error)
	List(ctx context.Context) ([]*Rule, error)
	// ListActive returns the active rules for the trigger type, in stable
	// (id) order.
	ListActive(ctx context.Context, trigger TriggerType) ([]*Rule, error)
	Update(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, id string) error
}
