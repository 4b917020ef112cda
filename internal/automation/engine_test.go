package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbapex/planeje/internal/eventbus"
	"github.com/jbapex/planeje/internal/task"
)

type fakeTaskRepo struct {
	tasks   map[string]*task.Task
	applies int
}

func newFakeTaskRepo(tasks ...*task.Task) *fakeTaskRepo {
	r := &fakeTaskRepo{tasks: make(map[string]*task.Task)}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

func (r *fakeTaskRepo) Create(ctx context.Context, t *task.Task) error {
	r.tasks[t.ID] = t
	return nil
}

func (r *fakeTaskRepo) Get(ctx context.Context, id string) (*task.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, errors.New("task not found")
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) List(ctx context.Context, boardID, taskType, status string, limit, offset int) ([]*task.Task, int, error) {
	return nil, 0, nil
}

func (r *fakeTaskRepo) Apply(ctx context.Context, id string, upd task.Update) (*task.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, errors.New("task not found")
	}
	r.applies++
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.AssigneeIDs != nil {
		t.AssigneeIDs = *upd.AssigneeIDs
	}
	if upd.BoardID != nil {
		t.BoardID = *upd.BoardID
	}
	if upd.History != nil {
		t.StatusHistory = append(t.StatusHistory, *upd.History)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	delete(r.tasks, id)
	return nil
}

type fakeRuleRepo struct {
	rules   []*Rule
	listErr error
}

func (r *fakeRuleRepo) Create(ctx context.Context, rule *Rule) error { return nil }
func (r *fakeRuleRepo) Get(ctx context.Context, id string) (*Rule, error) {
	return nil, errors.New("not found")
}
func (r *fakeRuleRepo) List(ctx context.Context) ([]*Rule, error) { return r.rules, nil }
func (r *fakeRuleRepo) ListActive(ctx context.Context, trigger TriggerType) ([]*Rule, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var active []*Rule
	for _, rule := range r.rules {
		if rule.Active && rule.TriggerType == trigger {
			active = append(active, rule)
		}
	}
	return active, nil
}
func (r *fakeRuleRepo) Update(ctx context.Context, rule *Rule) error { return nil }
func (r *fakeRuleRepo) Delete(ctx context.Context, id string) error  { return nil }

func newTestEngine(tasks *fakeTaskRepo, rules *fakeRuleRepo, mover BoardMover) *Engine {
	return NewEngine(tasks, rules, nil, NewExecutor(mover), eventbus.New())
}

func TestEngineOnEvent_AppliesMatchingRule(t *testing.T) {
	tasks := newFakeTaskRepo(&task.Task{ID: "t1", Status: "todo"})
	rules := &fakeRuleRepo{rules: []*Rule{
		{
			ID:          "r1",
			TriggerType: TriggerStatusChange,
			Trigger:     TriggerConfig{ToStatus: []string{"doing"}},
			Actions:     Actions{SetAssignee{AssigneeIDs: []string{"u1"}}},
			Active:      true,
		},
	}}
	engine := newTestEngine(tasks, rules, &fakeMover{})

	results, err := engine.OnEvent(context.Background(), "t1", TriggerStatusChange, EventData{OldStatus: "todo", NewStatus: "doing"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	got, _ := tasks.Get(context.Background(), "t1")
	assert.Equal(t, []string{"u1"}, got.AssigneeIDs)
	require.Len(t, got.StatusHistory, 1)
	assert.True(t, got.StatusHistory[0].Automated)
}

func TestEngineOnEvent_NoMatchIsNoOp(t *testing.T) {
	tasks := newFakeTaskRepo(&task.Task{ID: "t1", Status: "todo"})
	rules := &fakeRuleRepo{rules: []*Rule{
		{
			ID:          "r1",
			TriggerType: TriggerStatusChange,
			Trigger:     TriggerConfig{ToStatus: []string{"done"}},
			Actions:     Actions{SetAssignee{AssigneeIDs: []string{"u1"}}},
			Active:      true,
		},
	}}
	engine := newTestEngine(tasks, rules, &fakeMover{})

	results, err := engine.OnEvent(context.Background(), "t1", TriggerStatusChange, EventData{OldStatus: "todo", NewStatus: "doing"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, tasks.applies)
}

func TestEngineOnEvent_RuleFailureIsIsolated(t *testing.T) {
	tasks := newFakeTaskRepo(&task.Task{ID: "t1", Status: "todo"})
	rules := &fakeRuleRepo{rules: []*Rule{
		{
			ID:          "r1",
			TriggerType: TriggerStatusChange,
			Actions:     Actions{ChangeStatus{}}, // invalid: empty status
			Active:      true,
		},
		{
			ID:          "r2",
			TriggerType: TriggerStatusChange,
			Actions:     Actions{ChangeStatus{Status: "doing"}},
			Active:      true,
		},
	}}
	engine := newTestEngine(tasks, rules, &fakeMover{})

	results, err := engine.OnEvent(context.Background(), "t1", TriggerStatusChange, EventData{NewStatus: "doing"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Success)
	assert.Error(t, results[0].Err)
	assert.True(t, results[1].Success)

	got, _ := tasks.Get(context.Background(), "t1")
	assert.Equal(t, "doing", got.Status)
}

func TestEngineOnEvent_LaterRulesSeeCommittedState(t *testing.T) {
	tasks := newFakeTaskRepo(&task.Task{ID: "t1", Status: "todo"})
	rules := &fakeRuleRepo{rules: []*Rule{
		{
			ID:          "r1",
			TriggerType: TriggerStatusChange,
			Actions:     Actions{SetAssignee{AssigneeIDs: []string{"u1"}}},
			Active:      true,
		},
		{
			ID:          "r2",
			TriggerType: TriggerStatusChange,
			Actions:     Actions{SetAssignee{AssigneeIDs: []string{"u2"}}},
			Active:      true,
		},
	}}
	engine := newTestEngine(tasks, rules, &fakeMover{})

	results, err := engine.OnEvent(context.Background(), "t1", TriggerStatusChange, EventData{NewStatus: "doing"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	got, _ := tasks.Get(context.Background(), "t1")
	assert.Equal(t, []string{"u1", "u2"}, got.AssigneeIDs)
}

func TestEngineOnEvent_MoveFailureCommitsPartialResult(t *testing.T) {
	tasks := newFakeTaskRepo(&task.Task{ID: "t1", Status: "todo"})
	rules := &fakeRuleRepo{rules: []*Rule{
		{
			ID:          "r1",
			TriggerType: TriggerStatusChange,
			Actions: Actions{
				ChangeStatus{Status: "doing"},
				MoveTask{Destination: "b9"},
			},
			Active: true,
		},
	}}
	engine := newTestEngine(tasks, rules, &fakeMover{err: errors.New("board gone")})

	results, err := engine.OnEvent(context.Background(), "t1", TriggerStatusChange, EventData{NewStatus: "doing"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Error(t, results[0].Err)

	// The status change before the failed move was still committed.
	got, _ := tasks.Get(context.Background(), "t1")
	assert.Equal(t, "doing", got.Status)
}

func TestEngineOnEvent_ListActiveErrorIsFatal(t *testing.T) {
	tasks := newFakeTaskRepo(&task.Task{ID: "t1", Status: "todo"})
	rules := &fakeRuleRepo{listErr: errors.New("storage down")}
	engine := newTestEngine(tasks, rules, &fakeMover{})

	_, err := engine.OnEvent(context.Background(), "t1", TriggerStatusChange, EventData{NewStatus: "doing"})
	require.Error(t, err)
}

func TestEngineOnEvent_TaskCreatedTrigger(t *testing.T) {
	tasks := newFakeTaskRepo(&task.Task{ID: "t1", Status: "todo"})
	rules := &fakeRuleRepo{rules: []*Rule{
		{
			ID:          "r1",
			TriggerType: TriggerTaskCreated,
			Actions:     Actions{SetAssignee{AssigneeIDs: []string{"triagem"}}},
			Active:      true,
		},
	}}
	engine := newTestEngine(tasks, rules, &fakeMover{})

	results, err := engine.OnEvent(context.Background(), "t1", TriggerTaskCreated, EventData{NewStatus: "todo"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	got, _ := tasks.Get(context.Background(), "t1")
	assert.Equal(t, []string{"triagem"}, got.AssigneeIDs)
}
