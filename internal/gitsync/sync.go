package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glabtree/glabtree/internal/tree"
)

// Options configures one sync run.
type Options struct {
	// Destination is the directory the tree is mirrored under.
	Destination string
	// Concurrency is the worker pool size; values below one run sequentially.
	Concurrency int
	// Recursive clones and updates submodules recursively.
	Recursive bool
	// UseFetch fetches instead of pulling on updates and clones with
	// --mirror.
	UseFetch bool
	// GitOptions is a comma-separated list of raw git options passed
	// through verbatim to clone invocations.
	GitOptions string
	// Progress receives per-action updates; nil disables reporting.
	Progress Sink
}

// Action is one derived unit of work targeting one leaf's destination path.
type Action struct {
	Node *tree.Node
	Path string
}

// Engine executes sync runs against a VCS implementation.
type Engine struct {
	vcs    VCS
	logger *zap.Logger
}

// NewEngine returns a sync engine.
func NewEngine(vcs VCS, logger *zap.Logger) *Engine {
	return &Engine{vcs: vcs, logger: logger}
}

// Sync derives one action per leaf of the (already filtered) tree and
// executes all actions on a bounded worker pool, blocking until every action
// has completed. Actions fail independently: an error in one never stops its
// siblings. Cancelling the context (user interrupt) aborts the whole run and
// is the only error Sync returns from the execution phase.
func (engine *Engine) Sync(ctx context.Context, root *tree.Node, options Options) error {
	actions, deriveError := engine.deriveActions(root, options.Destination)
	if deriveError != nil {
		return deriveError
	}

	progress := options.Progress
	if progress == nil {
		progress = NewNopSink()
	}
	progress.Init(len(actions))

	engine.logger.Debug("starting sync",
		zap.Int("actions", len(actions)),
		zap.Int("groups", root.DescendantCount()-len(root.Leaves())),
		zap.Int("projects", len(root.Leaves())))

	var failedActions atomic.Int64
	workers, workersCtx := errgroup.WithContext(ctx)
	workers.SetLimit(poolSize(options.Concurrency))
	for _, action := range actions {
		action := action
		workers.Go(func() error {
			if workersCtx.Err() != nil {
				return workersCtx.Err()
			}
			return engine.cloneOrPull(workersCtx, action, options, progress, &failedActions)
		})
	}
	waitError := workers.Wait()

	elapsed := progress.Finish()
	engine.logger.Debug("sync finished",
		zap.Duration("elapsed", elapsed),
		zap.Int64("failed", failedActions.Load()))
	if waitError != nil {
		return fmt.Errorf("sync interrupted: %w", waitError)
	}
	return nil
}

func poolSize(concurrency int) int {
	if concurrency < 1 {
		return 1
	}
	return concurrency
}

// deriveActions walks the tree, creates every destination directory, and
// collects one action per leaf. Directory creation is idempotent.
func (engine *Engine) deriveActions(parent *tree.Node, destination string) ([]Action, error) {
	var actions []Action
	for _, child := range parent.Children() {
		childPath := filepath.Join(destination, filepath.FromSlash(child.RootPath))
		if makeError := os.MkdirAll(childPath, 0o755); makeError != nil {
			return nil, fmt.Errorf("create destination directory %s: %w", childPath, makeError)
		}
		if child.IsLeaf() {
			actions = append(actions, Action{Node: child, Path: childPath})
			continue
		}
		childActions, deriveError := engine.deriveActions(child, destination)
		if deriveError != nil {
			return nil, deriveError
		}
		actions = append(actions, childActions...)
	}
	return actions, nil
}

// cloneOrPull executes one action. It returns an error only when the context
// was cancelled; every other failure is logged, counted, and isolated.
func (engine *Engine) cloneOrPull(ctx context.Context, action Action, options Options, progress Sink, failedActions *atomic.Int64) error {
	if engine.vcs.IsRepository(action.Path) {
		return engine.update(ctx, action, options, progress, failedActions)
	}
	return engine.clone(ctx, action, options, progress, failedActions)
}

func (engine *Engine) update(ctx context.Context, action Action, options Options, progress Sink, failedActions *atomic.Int64) error {
	engine.logger.Debug("updating existing repository", zap.String("path", action.Path))
	operation := "pull"
	if options.UseFetch {
		operation = "fetch"
	}
	progress.Step(action.Node.Name, operation)

	var updateError error
	if options.UseFetch {
		updateError = engine.vcs.Fetch(ctx, action.Path)
	} else {
		updateError = engine.vcs.Pull(ctx, action.Path)
	}
	if updateError == nil && options.Recursive {
		updateError = engine.vcs.UpdateSubmodules(ctx, action.Path)
	}
	if updateError != nil {
		if interrupted(ctx, updateError) {
			return ctx.Err()
		}
		failedActions.Add(1)
		engine.logger.Error("error updating repository",
			zap.String("path", action.Path),
			zap.Error(updateError))
		return nil
	}
	engine.reconcileProtectedBranchWorktrees(ctx, action)
	return nil
}

func (engine *Engine) clone(ctx context.Context, action Action, options Options, progress Sink, failedActions *atomic.Int64) error {
	if action.Node.Kind != tree.KindProject {
		// An empty group or subgroup has no remote repository.
		engine.logger.Debug("skipping clone of non-project leaf",
			zap.String("kind", string(action.Node.Kind)),
			zap.String("path", action.Path))
		return nil
	}
	engine.logger.Debug("cloning new repository", zap.String("path", action.Path))
	progress.Step(action.Node.Name, "clone")

	cloneError := engine.vcs.Clone(ctx, action.Node.URL, action.Path, cloneOptions(options))
	if cloneError != nil {
		if interrupted(ctx, cloneError) {
			return ctx.Err()
		}
		failedActions.Add(1)
		engine.logger.Error("error cloning repository",
			zap.String("path", action.Path),
			zap.Error(cloneError))
		return nil
	}
	engine.reconcileProtectedBranchWorktrees(ctx, action)
	return nil
}

// cloneOptions assembles the clone flag list: recursive submodules, the
// mirror variant for fetch-oriented syncs, and the user's raw passthrough
// options.
func cloneOptions(options Options) []string {
	var flags []string
	if options.Recursive {
		flags = append(flags, "--recursive")
	}
	if options.UseFetch {
		flags = append(flags, "--mirror")
	}
	if options.GitOptions != "" {
		flags = append(flags, strings.Split(options.GitOptions, ",")...)
	}
	return flags
}

func interrupted(ctx context.Context, operationError error) bool {
	return ctx.Err() != nil || errors.Is(operationError, context.Canceled)
}
