package runs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/scraper"
)

// RunStore is the run bookkeeping a Launcher needs. Tracker implements it.
type RunStore interface {
	Start(ctx context.Context, trigger string) (*model.Run, error)
	Finish(ctx context.Context, run *model.Run, res scraper.RunResult, runErr error) error
	Get(ctx context.Context, id string) (*model.Run, error)
}

// Runner performs one ingestion cycle. scraper.Worker implements it.
type Runner interface {
	Run(ctx context.Context) (scraper.RunResult, error)
}

const finishTimeout = 10 * time.Second

// Launcher starts ingestion runs in the background and hands back a Run
// handle immediately.
type Launcher struct {
	runs   RunStore
	runner Runner

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLauncher returns a Launcher. Runs it starts outlive the triggering
// request and are cancelled only by Shutdown.
func NewLauncher(runs RunStore, runner Runner) *Launcher {
	base, cancel := context.WithCancel(context.Background())
	return &Launcher{runs: runs, runner: runner, base: base, cancel: cancel}
}

// Trigger starts a run unless one is already in progress, in which case it
// returns ErrRunInProgress. The returned Run is a snapshot taken at start.
func (l *Launcher) Trigger(ctx context.Context, trigger string) (*model.Run, error) {
	run, err := l.runs.Start(ctx, trigger)
	if err != nil {
		return nil, err
	}
	snapshot := *run

	log.Printf("[runs] Run %s started (trigger=%s)", run.ID, trigger)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		res, runErr := l.runner.Run(l.base)

		ctx, cancel := context.WithTimeout(context.WithoutCancel(l.base), finishTimeout)
		defer cancel()
		if err := l.runs.Finish(ctx, run, res, runErr); err != nil {
			log.Printf("[runs] Run %s: recording outcome failed: %v", run.ID, err)
		}
		if runErr != nil {
			log.Printf("[runs] Run %s failed after %d insert(s): %v", run.ID, res.Inserted, runErr)
			return
		}
		log.Printf("[runs] Run %s finished — inserted=%d skipped=%d", run.ID, res.Inserted, res.Skipped)
	}()

	return &snapshot, nil
}

// Get returns the record of a previously triggered run.
func (l *Launcher) Get(ctx context.Context, id string) (*model.Run, error) {
	return l.runs.Get(ctx, id)
}

// Shutdown cancels runs in flight and waits for them to record their
// outcome, or for ctx to expire.
func (l *Launcher) Shutdown(ctx context.Context) error {
	l.cancel()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
