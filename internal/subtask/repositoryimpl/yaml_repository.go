package repositoryimpl

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbapex/planeje/internal/subtask"
	"github.com/jbapex/planeje/pkg/cerr"
	"github.com/jbapex/planeje/pkg/storage"
)

const subtasksPrefix = "subtasks"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func taskPrefix(taskID string) string {
	return fmt.Sprintf("%s/%s", subtasksPrefix, taskID)
}

func path(taskID, id string) string {
	return fmt.Sprintf("%s/%s.yaml", taskPrefix(taskID), id)
}

func (r *YAMLRepository) ListByTask(ctx context.Context, taskID string) ([]*subtask.Subtask, error) {
	paths, err := r.storage.List(ctx, taskPrefix(taskID))
	if err != nil {
		return nil, cerr.WrapStorageReadError("subtasks", err)
	}

	sort.Strings(paths)

	var all []*subtask.Subtask
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var s subtask.Subtask
		if err := yaml.Unmarshal(data, &s); err != nil {
			continue
		}
		all = append(all, &s)
	}
	return all, nil
}

func (r *YAMLRepository) Get(ctx context.Context, taskID, id string) (*subtask.Subtask, error) {
	data, err := r.storage.Read(ctx, path(taskID, id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("subtask", err)
	}
	var s subtask.Subtask
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal subtask: %w", err))
	}
	return &s, nil
}

func (r *YAMLRepository) InsertMany(ctx context.Context, records []*subtask.Subtask) ([]*subtask.Subtask, error) {
	for _, s := range records {
		if err := r.write(ctx, s); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *YAMLRepository) Update(ctx context.Context, s *subtask.Subtask) error {
	exists, err := r.storage.Exists(ctx, path(s.TaskID, s.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("subtask", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "subtask not found", nil)
	}
	s.UpdatedAt = time.Now()
	return r.write(ctx, s)
}

func (r *YAMLRepository) Delete(ctx context.Context, taskID, id string) error {
	if err := r.storage.Delete(ctx, path(taskID, id)); err != nil {
		return cerr.WrapStorageDeleteError("subtask", err)
	}
	return nil
}

func (r *YAMLRepository) write(ctx context.Context, s *subtask.Subtask) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal subtask: %w", err))
	}
	if err := r.storage.Write(ctx, path(s.TaskID, s.ID), data); err != nil {
		return cerr.WrapStorageWriteError("subtask", err)
	}
	return nil
}
