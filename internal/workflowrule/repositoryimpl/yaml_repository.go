package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbapex/planeje/internal/workflowrule"
	"github.com/jbapex/planeje/pkg/cerr"
	"github.com/jbapex/planeje/pkg/storage"
)

const rulesPrefix = "workflow_rules"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

// path derives the document name from the rule key. Task types and statuses
// are operator-supplied strings, so both parts are escaped.
func path(taskType, status string) string {
	return fmt.Sprintf("%s/%s__%s.yaml", rulesPrefix, url.PathEscape(taskType), url.PathEscape(status))
}

func (r *YAMLRepository) Get(ctx context.Context, taskType, status string) (*workflowrule.WorkflowRule, error) {
	data, err := r.storage.Read(ctx, path(taskType, status))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, cerr.WrapStorageReadError("workflow rule", err)
	}
	var rule workflowrule.WorkflowRule
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal workflow rule: %w", err))
	}
	return &rule, nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*workflowrule.WorkflowRule, error) {
	paths, err := r.storage.List(ctx, rulesPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("workflow rules", err)
	}

	sort.Strings(paths)

	var all []*workflowrule.WorkflowRule
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var rule workflowrule.WorkflowRule
		if err := yaml.Unmarshal(data, &rule); err != nil {
			continue
		}
		all = append(all, &rule)
	}
	return all, nil
}

func (r *YAMLRepository) Upsert(ctx context.Context, rule *workflowrule.WorkflowRule) error {
	existing, err := r.Get(ctx, rule.TaskType, rule.Status)
	if err != nil {
		return err
	}
	now := time.Now()
	if existing != nil {
		rule.CreatedAt = existing.CreatedAt
	} else {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	data, err := yaml.Marshal(rule)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal workflow rule: %w", err))
	}
	if err := r.storage.Write(ctx, path(rule.TaskType, rule.Status), data); err != nil {
		return cerr.WrapStorageWriteError("workflow rule", err)
	}
	return nil
}

func (r *YAMLRepository) Delete(ctx context.Context, taskType, status string) error {
	if err := r.storage.Delete(ctx, path(taskType, status)); err != nil {
		return cerr.WrapStorageDeleteError("workflow rule", err)
	}
	return nil
}
