// Package dispatcher feeds task lifecycle events from the bus into the
// automation engine.
package dispatcher

import (
	"context"
	"log/slog"

	"github.com/jbapex/planeje/internal/automation"
	"github.com/jbapex/planeje/internal/eventbus"
)

type Dispatcher struct {
	bus    *eventbus.Bus
	engine *automation.Engine
}

func New(bus *eventbus.Bus, engine *automation.Engine) *Dispatcher {
	return &Dispatcher{
		bus:    bus,
		engine: engine,
	}
}

// Start subscribes to the event bus and processes task lifecycle events
// sequentially, one event at a time. It blocks until ctx is cancelled.
// Automation runs are best-effort side effects: failures are logged and
// never propagate back to the transition that triggered them.
func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.bus.Subscribe(256)
	defer d.bus.Unsubscribe(subID)

	slog.Info("automation dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("automation dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			switch event.Type {
			case eventbus.TypeTaskCreated:
				d.dispatch(ctx, event, automation.TriggerTaskCreated)
			case eventbus.TypeTaskStatusChanged:
				d.dispatch(ctx, event, automation.TriggerStatusChange)
			}
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event *eventbus.Event, trigger automation.TriggerType) {
	ev := automation.EventData{
		OldStatus: event.Metadata["old_status"],
		NewStatus: event.Metadata["new_status"],
	}

	results, err := d.engine.OnEvent(ctx, event.ResourceID, trigger, ev)
	if err != nil {
		slog.Error("automation event failed",
			"task_id", event.ResourceID,
			"trigger", string(trigger),
			"error", err,
		)
		return
	}

	for _, res := range results {
		if res.Success {
			continue
		}
		slog.Warn("automation rule failed",
			"task_id", event.ResourceID,
			"rule_id", res.RuleID,
			"error", res.Err,
		)
	}
	if len(results) > 0 {
		slog.Info("automation processed",
			"task_id", event.ResourceID,
			"trigger", string(trigger),
			"rules", len(results),
		)
	}
}
