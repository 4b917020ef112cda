package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/jbapex/planeje/internal/automation"
	automationrepo "github.com/jbapex/planeje/internal/automation/repositoryimpl"
	"github.com/jbapex/planeje/internal/board"
	boardrepo "github.com/jbapex/planeje/internal/board/repositoryimpl"
	"github.com/jbapex/planeje/internal/checklist"
	"github.com/jbapex/planeje/internal/config"
	"github.com/jbapex/planeje/internal/dispatcher"
	"github.com/jbapex/planeje/internal/event"
	"github.com/jbapex/planeje/internal/eventbus"
	"github.com/jbapex/planeje/internal/subtask"
	subtaskrepo "github.com/jbapex/planeje/internal/subtask/repositoryimpl"
	"github.com/jbapex/planeje/internal/task"
	taskrepo "github.com/jbapex/planeje/internal/task/repositoryimpl"
	"github.com/jbapex/planeje/internal/workflowrule"
	workflowrulerepo "github.com/jbapex/planeje/internal/workflowrule/repositoryimpl"
	"github.com/jbapex/planeje/pkg/clog"
	"github.com/jbapex/planeje/pkg/storage"

	server "github.com/jbapex/planeje/internal"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	var localStore *storage.Local
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		localStore, err = storage.NewLocal(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
		store = localStore
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	boardRepo := boardrepo.NewYAMLRepository(store)
	taskRepo := taskrepo.NewYAMLRepository(store)
	subtaskRepo := subtaskrepo.NewYAMLRepository(store)
	workflowRuleRepo := workflowrulerepo.NewYAMLRepository(store)
	automationRepo := automationrepo.NewYAMLRepository(store)

	// Setup automation engine
	checklistService := checklist.NewService(subtaskRepo, workflowRuleRepo)
	mover := board.NewMover(boardRepo, taskRepo)
	executor := automation.NewExecutor(mover)
	engine := automation.NewEngine(taskRepo, automationRepo, checklistService, executor, bus)
	disp := dispatcher.New(bus, engine)

	// Setup servers
	boardServer := board.NewServer(boardRepo)
	taskServer := task.NewServer(taskRepo, checklistService, bus)
	subtaskServer := subtask.NewServer(subtaskRepo)
	workflowRuleServer := workflowrule.NewServer(workflowRuleRepo)
	automationServer := automation.NewServer(automationRepo)
	eventServer := event.NewServer(bus)

	srv := server.NewServer(
		env,
		boardServer,
		taskServer,
		subtaskServer,
		workflowRuleServer,
		automationServer,
		eventServer,
	)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() {
		disp.Start(ctx)
	})

	if env.WatchRules && localStore != nil {
		watcher := automation.NewWatcher(localStore.Dir(automationrepo.RulesPrefix), bus)
		wg.Go(func() {
			if err := watcher.Run(ctx); err != nil {
				slog.Error("rule watcher stopped", "error", err)
			}
		})
	}

	wg.Go(func() {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	})

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give active connections time to finish after stream contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	wg.Wait()
}
