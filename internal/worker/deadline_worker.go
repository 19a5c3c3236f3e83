package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/llalegg/rd-tasks-sub000/internal/deadline"
	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
)

type TaskLister interface {
	ListTasks(ctx context.Context) ([]*task.Task, error)
}

type Recorder interface {
	SetDeadlineCounts(counts map[string]int)
}

// DeadlineWorker periodically buckets every open task by deadline and
// publishes the counts.
type DeadlineWorker struct {
	tasks    TaskLister
	recorder Recorder
	interval time.Duration
	now      func() time.Time
}

func NewDeadlineWorker(tasks TaskLister, recorder Recorder, interval time.Duration) *DeadlineWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &DeadlineWorker{
		tasks:    tasks,
		recorder: recorder,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs a pass immediately and then on every tick until ctx is done.
func (w *DeadlineWorker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runPass(ctx)
	for {
		select {
		case <-ticker.C:
			w.runPass(ctx)
		case <-ctx.Done():
			logger.Info("Worker: deadline check stopping")
			return nil
		}
	}
}

func (w *DeadlineWorker) runPass(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil {
		logger.Warn("Worker: deadline check failed", zap.Error(err))
	}
}

// Check classifies open tasks against today and returns the per-bucket counts.
func (w *DeadlineWorker) Check(ctx context.Context) (map[string]int, error) {
	start := time.Now()

	tasks, err := w.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	counts := map[string]int{
		string(deadline.BucketNone):    0,
		string(deadline.BucketOverdue): 0,
		string(deadline.BucketWarning): 0,
		string(deadline.BucketNormal):  0,
	}
	today := w.now()
	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			continue
		}
		counts[string(deadline.Classify(t.Deadline, today).Bucket)]++
	}
	w.recorder.SetDeadlineCounts(counts)

	logger.Info("Worker: deadline check finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("overdue", counts[string(deadline.BucketOverdue)]),
		zap.Int("warning", counts[string(deadline.BucketWarning)]))
	return counts, nil
}
