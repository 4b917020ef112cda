package repositoryimpl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbapex/planeje/internal/automation"
	"github.com/jbapex/planeje/pkg/cerr"
	"github.com/jbapex/planeje/pkg/storage"
)

// RulesPrefix is the storage directory holding automation rule documents.
const RulesPrefix = "automation_rules"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", RulesPrefix, id)
}

func (r *YAMLRepository) Create(ctx context.Context, rule *automation.Rule) error {
	exists, err := r.storage.Exists(ctx, path(rule.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("automation rule", err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, "automation rule already exists", nil)
	}
	return r.write(ctx, rule)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*automation.Rule, error) {
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("automation rule", err)
	}
	var rule automation.Rule
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "malformed automation rule", err)
	}
	return &rule, nil
}

func (r *YAMLRepository) List(ctx context.Context) ([]*automation.Rule, error) {
	paths, err := r.storage.List(ctx, RulesPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("automation rules", err)
	}

	sort.Strings(paths)

	var all []*automation.Rule
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var rule automation.Rule
		if err := yaml.Unmarshal(data, &rule); err != nil {
			// Malformed rule documents are skipped, not fatal for the list.
			slog.Warn("skipping malformed automation rule", "path", p, "error", err)
			continue
		}
		all = append(all, &rule)
	}
	return all, nil
}

func (r *YAMLRepository) ListActive(ctx context.Context, trigger automation.TriggerType) ([]*automation.Rule, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var active []*automation.Rule
	for _, rule := range all {
		if rule.Active && rule.TriggerType == trigger {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (r *YAMLRepository) Update(ctx context.Context, rule *automation.Rule) error {
	exists, err := r.storage.Exists(ctx, path(rule.ID))
	if err != nil {
		return cerr.WrapStorageWriteError("automation rule", err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, "automation rule not found", nil)
	}
	rule.UpdatedAt = time.Now()
	return r.write(ctx, rule)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if err := r.storage.Delete(ctx, path(id)); err != nil {
		return cerr.WrapStorageDeleteError("automation rule", err)
	}
	return nil
}

func (r *YAMLRepository) write(ctx context.Context, rule *automation.Rule) error {
	data, err := yaml.Marshal(rule)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal automation rule: %w", err))
	}
	if err := r.storage.Write(ctx, path(rule.ID), data); err != nil {
		return cerr.WrapStorageWriteError("automation rule", err)
	}
	return nil
}
