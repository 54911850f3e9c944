// Package runs tracks ingestion runs: a single-flight lock so that only one
// run writes at a time, a status record per run, and a completion event.
package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/scraper"
)

const (
	lockKey      = "jobs:ingestion:lock"
	runKeyPrefix = "jobs:ingestion:run:"
	recordTTL    = 7 * 24 * time.Hour

	// EventFinished is the pub/sub channel a completed run is announced on.
	EventFinished = "EVENT_INGESTION_FINISHED"
)

var (
	ErrRunInProgress = errors.New("an ingestion run is already in progress")
	ErrUnknownRun    = errors.New("run not found")
	ErrRunFinished   = errors.New("run already finished")
)

// FinishedEvent is the payload published on EventFinished.
type FinishedEvent struct {
	Type     string          `json:"type"`
	RunID    string          `json:"runId"`
	Status   model.RunStatus `json:"status"`
	Inserted int             `json:"inserted"`
	Skipped  int             `json:"skipped"`
}

// releaseLock deletes the lock only while it still holds our run id, so an
// expired lock re-acquired by another run is left alone.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Tracker stores run records and the ingestion lock in Redis.
type Tracker struct {
	rdb     *redis.Client
	lockTTL time.Duration
}

// NewTracker returns a Tracker. lockTTL bounds how long a crashed run can
// block the next one.
func NewTracker(rdb *redis.Client, lockTTL time.Duration) *Tracker {
	return &Tracker{rdb: rdb, lockTTL: lockTTL}
}

// Start acquires the ingestion lock and records a new running run.
// It returns ErrRunInProgress if another run holds the lock.
func (t *Tracker) Start(ctx context.Context, trigger string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.NewString(),
		Status:    model.RunRunning,
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
	}

	ok, err := t.rdb.SetNX(ctx, lockKey, run.ID, t.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire ingestion lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}

	if err := t.save(ctx, run); err != nil {
		t.release(ctx, run.ID)
		return nil, err
	}
	return run, nil
}

// Finish records the outcome of run, releases the lock and publishes
// EventFinished. run is updated in place.
func (t *Tracker) Finish(ctx context.Context, run *model.Run, res scraper.RunResult, runErr error) error {
	defer t.release(ctx, run.ID)
	if err := Complete(run, res, runErr, time.Now()); err != nil {
		return err
	}

	if err := t.save(ctx, run); err != nil {
		return err
	}

	event, err := json.Marshal(FinishedEvent{
		Type:     EventFinished,
		RunID:    run.ID,
		Status:   run.Status,
		Inserted: run.Inserted,
		Skipped:  run.Skipped,
	})
	if err != nil {
		slog.Warn("encode "+EventFinished+" failed", "run", run.ID, "err", err)
		return nil
	}
	if err := t.rdb.Publish(ctx, EventFinished, event).Err(); err != nil {
		slog.Warn("publish "+EventFinished+" failed", "err", err)
	}
	return nil
}

// Get returns the record for id, or ErrUnknownRun.
func (t *Tracker) Get(ctx context.Context, id string) (*model.Run, error) {
	data, err := t.rdb.Get(ctx, runKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUnknownRun
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	if _, err := ParseStatus(string(run.Status)); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, nil
}

func (t *Tracker) save(ctx context.Context, run *model.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	if err := t.rdb.Set(ctx, runKeyPrefix+run.ID, data, recordTTL).Err(); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (t *Tracker) release(ctx context.Context, id string) {
	if err := releaseLock.Run(ctx, t.rdb, []string{lockKey}, id).Err(); err != nil {
		slog.Warn("release ingestion lock failed", "run", id, "err", err)
	}
}

// Complete moves run to its terminal status and fills in the counts from
// the worker's result. A run that has already finished is left untouched.
func Complete(run *model.Run, res scraper.RunResult, runErr error, now time.Time) error {
	if IsTerminal(run.Status) {
		return fmt.Errorf("run %s (%s): %w", run.ID, run.Status, ErrRunFinished)
	}
	to := model.RunSucceeded
	if runErr != nil {
		to = model.RunFailed
	}
	if !IsTransitionAllowed(run.Status, to) {
		return fmt.Errorf("run %s (%s): %w", run.ID, run.Status, ErrRunFinished)
	}

	finished := now.UTC()
	run.FinishedAt = &finished
	run.Searched = res.Searched
	run.Inserted = res.Inserted
	run.Skipped = res.Skipped
	run.NoURL = res.NoURL
	run.Tagged = res.Tagged

	run.Status = to
	run.Error = ""
	if runErr != nil {
		run.Error = runErr.Error()
	}
	return nil
}
