package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbapex/planeje/internal/automation"
	"github.com/jbapex/planeje/pkg/cerr"
	"github.com/jbapex/planeje/pkg/storage"
)

func newTestRepo(t *testing.T) (*YAMLRepository, storage.Storage) {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store), store
}

func newRule(id string, trigger automation.TriggerType, active bool) *automation.Rule {
	return &automation.Rule{
		ID:          id,
		Name:        "rule " + id,
		TriggerType: trigger,
		Actions:     automation.Actions{automation.ChangeStatus{Status: "doing"}},
		Active:      active,
	}
}

func TestYAMLRepository_CreateGetRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	rule := newRule("r1", automation.TriggerStatusChange, true)
	rule.Trigger = automation.TriggerConfig{ToStatus: []string{"doing"}}
	require.NoError(t, repo.Create(ctx, rule))

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, automation.TriggerStatusChange, got.TriggerType)
	assert.Equal(t, []string{"doing"}, got.Trigger.ToStatus)
	require.Len(t, got.Actions, 1)
	assert.Equal(t, automation.ChangeStatus{Status: "doing"}, got.Actions[0])
}

func TestYAMLRepository_GetMalformed(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "automation_rules/bad.yaml", []byte("actions: {not: a list}\n")))

	_, err := repo.Get(ctx, "bad")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

func TestYAMLRepository_ListSkipsMalformed(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRule("r1", automation.TriggerTaskCreated, true)))
	require.NoError(t, store.Write(ctx, "automation_rules/broken.yaml", []byte("actions: {not: a list}\n")))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "r1", all[0].ID)
}

func TestYAMLRepository_ListActiveFilters(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRule("r1", automation.TriggerStatusChange, true)))
	require.NoError(t, repo.Create(ctx, newRule("r2", automation.TriggerStatusChange, false)))
	require.NoError(t, repo.Create(ctx, newRule("r3", automation.TriggerTaskCreated, true)))

	active, err := repo.ListActive(ctx, automation.TriggerStatusChange)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "r1", active[0].ID)
}

func TestYAMLRepository_ListActiveStableOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"r3", "r1", "r2"} {
		require.NoError(t, repo.Create(ctx, newRule(id, automation.TriggerTaskCreated, true)))
	}

	active, err := repo.ListActive(ctx, automation.TriggerTaskCreated)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "r1", active[0].ID)
	assert.Equal(t, "r2", active[1].ID)
	assert.Equal(t, "r3", active[2].ID)
}

func TestYAMLRepository_UpdateMissing(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Update(context.Background(), newRule("ghost", automation.TriggerTaskCreated, true))
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestYAMLRepository_CreateDuplicate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRule("r1", automation.TriggerTaskCreated, true)))
	err := repo.Create(ctx, newRule("r1", automation.TriggerTaskCreated, true))
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))
}
