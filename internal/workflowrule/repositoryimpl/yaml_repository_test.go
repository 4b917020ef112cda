package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbapex/planeje/internal/subtask"
	"github.com/jbapex/planeje/internal/workflowrule"
	"github.com/jbapex/planeje/pkg/cerr"
	"github.com/jbapex/planeje/pkg/storage"
)

func newTestRepo(t *testing.T) *YAMLRepository {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store)
}

func rule(taskType, status string, titles ...string) *workflowrule.WorkflowRule {
	items := make([]workflowrule.RequiredItem, 0, len(titles))
	for _, title := range titles {
		items = append(items, workflowrule.RequiredItem{Title: title, Kind: subtask.KindCheckbox})
	}
	return &workflowrule.WorkflowRule{TaskType: taskType, Status: status, Items: items}
}

func TestYAMLRepository_UpsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, rule("video", "edicao", "Roteiro")))

	got, err := repo.Get(ctx, "video", "edicao")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Roteiro", got.Items[0].Title)
}

func TestYAMLRepository_GetAbsentReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Get(context.Background(), "video", "edicao")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestYAMLRepository_UpsertReplacesSameKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := rule("video", "edicao", "Roteiro")
	require.NoError(t, repo.Upsert(ctx, first))
	require.NoError(t, repo.Upsert(ctx, rule("video", "edicao", "Roteiro", "Briefing")))

	got, err := repo.Get(ctx, "video", "edicao")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 2)
	// The original creation timestamp survives the replace.
	assert.Equal(t, first.CreatedAt.Unix(), got.CreatedAt.Unix())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestYAMLRepository_KeyEscaping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, rule("video/short", "em revisao", "Corte final")))

	got, err := repo.Get(ctx, "video/short", "em revisao")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "video/short", got.TaskType)

	// A key sharing the separator characters must not collide.
	other, err := repo.Get(ctx, "video", "short__em revisao")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestYAMLRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, rule("video", "edicao", "Roteiro")))
	require.NoError(t, repo.Delete(ctx, "video", "edicao"))

	got, err := repo.Get(ctx, "video", "edicao")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = repo.Delete(ctx, "video", "edicao")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}
