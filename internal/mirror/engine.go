package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ghmirror/internal/discovery"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Options configures an Engine. It is copied at construction.
type Options struct {
	// TargetDir is the root directory mirrors live under. It must exist.
	TargetDir string

	// Concurrency caps how many repositories are synced at once. Must be >= 1.
	Concurrency int

	// Layout defaults to LayoutFlat.
	Layout Layout

	// Runner defaults to an ExecRunner for git.
	Runner Runner

	// OnResult, when set, is called once per result as soon as it completes.
	// Calls are serialized.
	OnResult func(Result)
}

// Engine clones or fast-forwards local mirrors.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.TargetDir == "" {
		return nil, errors.New("mirror: target dir is empty")
	}
	if opts.Concurrency <= 0 {
		return nil, errors.Newf("mirror: concurrency must be >= 1, got %d", opts.Concurrency)
	}
	if opts.Layout == "" {
		opts.Layout = LayoutFlat
	}
	if _, err := ParseLayout(string(opts.Layout)); err != nil {
		return nil, err
	}
	if opts.Runner == nil {
		opts.Runner = &ExecRunner{}
	}
	return &Engine{opts: opts}, nil
}

// SyncAll syncs every repository with at most Options.Concurrency in flight and
// returns one result per repository in completion order. It never fails;
// per-repository problems are reported in the results.
//
// In the flat layout, repositories whose local path is already claimed by an
// earlier repository in the input are not touched and get StatusError.
func (e *Engine) SyncAll(ctx context.Context, repos []discovery.Repository) []Result {
	results := make([]Result, 0, len(repos))
	var mu sync.Mutex
	record := func(res Result) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, res)
		if e.opts.OnResult != nil {
			e.opts.OnResult(res)
		}
	}

	claimed := make(map[string]string, len(repos))

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for _, repo := range repos {
		path := e.opts.Layout.Path(e.opts.TargetDir, repo)
		if owner, ok := claimed[path]; ok {
			record(Result{
				FullName:  repo.FullName,
				LocalPath: path,
				Status:    StatusError,
				Error:     collisionMessage(path, owner),
			})
			continue
		}
		claimed[path] = repo.FullName

		g.Go(func() error {
			record(e.syncRecovered(ctx, repo))
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// syncRecovered turns a panic in the runner into an error result so SyncAll
// still yields exactly one result per repository.
func (e *Engine) syncRecovered(ctx context.Context, repo discovery.Repository) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				FullName:  repo.FullName,
				LocalPath: e.opts.Layout.Path(e.opts.TargetDir, repo),
				Status:    StatusError,
				Error:     fmt.Sprintf("panic: %v", r),
			}
		}
	}()
	return e.SyncOne(ctx, repo)
}

// SyncOne updates an existing checkout with fetch + fast-forward pull, or
// clones the repository when no checkout exists.
func (e *Engine) SyncOne(ctx context.Context, repo discovery.Repository) Result {
	path := e.opts.Layout.Path(e.opts.TargetDir, repo)
	res := Result{FullName: repo.FullName, LocalPath: path}

	if isCheckout(path) {
		// A failed fetch is not fatal; the pull decides the status.
		if err := e.opts.Runner.Run(ctx, path, "fetch", "--all", "--prune"); err != nil {
			var inv *InvocationError
			if errors.As(err, &inv) {
				res.Status, res.Error = StatusError, err.Error()
				return res
			}
		}
		err := e.opts.Runner.Run(ctx, path, "pull", "--ff-only")
		res.Status, res.Error = classify(err, StatusUpdated, StatusUpdateFailed)
		return res
	}

	if parent := filepath.Dir(path); parent != e.opts.TargetDir {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			res.Status, res.Error = StatusError, errors.Wrap(err, "create parent directory").Error()
			return res
		}
	}
	err := e.opts.Runner.Run(ctx, "", "clone", repo.SSHURL, path, "--progress")
	res.Status, res.Error = classify(err, StatusCloned, StatusCloneFailed)
	return res
}

func classify(err error, ok, failed Status) (Status, string) {
	if err == nil {
		return ok, ""
	}
	var pe *ProcessError
	if errors.As(err, &pe) {
		if pe.Stderr != "" {
			return failed, pe.Stderr
		}
		return failed, pe.Error()
	}
	return StatusError, err.Error()
}

func collisionMessage(path, owner string) string {
	return fmt.Sprintf("local path %s is already used by %s (use --layout owner)", path, owner)
}

func isCheckout(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	// .git is a directory for normal clones and a file for worktrees.
	_, err = os.Stat(filepath.Join(path, ".git"))
	return err == nil
}
