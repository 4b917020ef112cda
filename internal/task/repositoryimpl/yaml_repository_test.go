package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbapex/planeje/internal/task"
	"github.com/jbapex/planeje/pkg/cerr"
	"github.com/jbapex/planeje/pkg/storage"
)

func newTestRepo(t *testing.T) *YAMLRepository {
	t.Helper()
	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store)
}

func newTask(id, boardID, taskType, status string) *task.Task {
	now := time.Now()
	return &task.Task{
		ID:        id,
		BoardID:   boardID,
		Type:      taskType,
		Title:     "Task " + id,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestYAMLRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tk := newTask("t1", "b1", "video", "todo")
	tk.AssigneeIDs = []string{"u1"}
	require.NoError(t, repo.Create(ctx, tk))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "b1", got.BoardID)
	assert.Equal(t, []string{"u1"}, got.AssigneeIDs)
}

func TestYAMLRepository_CreateDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask("t1", "b1", "video", "todo")))
	err := repo.Create(ctx, newTask("t1", "b1", "video", "todo"))
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))
}

func TestYAMLRepository_GetNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestYAMLRepository_ApplyPartialUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask("t1", "b1", "video", "todo")))

	status := "doing"
	got, err := repo.Apply(ctx, "t1", task.Update{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "doing", got.Status)
	// Untouched fields survive.
	assert.Equal(t, "b1", got.BoardID)
	assert.Equal(t, "Task t1", got.Title)
}

func TestYAMLRepository_ApplyAppendsHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask("t1", "b1", "video", "todo")))

	for _, status := range []string{"doing", "done"} {
		s := status
		_, err := repo.Apply(ctx, "t1", task.Update{
			Status:  &s,
			History: &task.HistoryEntry{Status: s, ChangedAt: time.Now()},
		})
		require.NoError(t, err)
	}

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, "doing", got.StatusHistory[0].Status)
	assert.Equal(t, "done", got.StatusHistory[1].Status)
}

func TestYAMLRepository_ApplyEmptyUpdateIsNoOp(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask("t1", "b1", "video", "todo")))

	before, err := repo.Get(ctx, "t1")
	require.NoError(t, err)

	after, err := repo.Apply(ctx, "t1", task.Update{})
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestYAMLRepository_ListFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask("t1", "b1", "video", "todo")))
	require.NoError(t, repo.Create(ctx, newTask("t2", "b1", "post", "todo")))
	require.NoError(t, repo.Create(ctx, newTask("t3", "b2", "video", "doing")))

	got, total, err := repo.List(ctx, "b1", "", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, got, 2)

	got, total, err = repo.List(ctx, "", "video", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	got, total, err = repo.List(ctx, "b1", "video", "todo", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "t1", got[0].ID)
}

func TestYAMLRepository_ListPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, repo.Create(ctx, newTask(id, "b1", "video", "todo")))
	}

	got, total, err := repo.List(ctx, "", "", "", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, got, 2)

	got, total, err = repo.List(ctx, "", "", "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 1)
	assert.Equal(t, "t3", got[0].ID)

	got, total, err = repo.List(ctx, "", "", "", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, got)
}

func TestYAMLRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTask("t1", "b1", "video", "todo")))
	require.NoError(t, repo.Delete(ctx, "t1"))

	_, err := repo.Get(ctx, "t1")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}
