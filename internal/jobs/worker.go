// Package jobs runs periodic background tasks for the server.
package jobs

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Task is one unit of periodic work
type Task interface {
	Run(ctx context.Context) error
}

// Worker runs a Task on a fixed interval until stopped
type Worker struct {
	name     string
	task     Task
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a new Worker instance
func NewWorker(name string, task Task, interval time.Duration) *Worker {
	return &Worker{
		name:     name,
		task:     task,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the polling loop and blocks until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	logger := log.WithField("worker", w.name)
	logger.WithField("interval", w.interval.String()).Info("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			logger.Info("worker stopped: stop signal received")
			return
		case <-ticker.C:
			if err := w.task.Run(ctx); err != nil {
				logger.WithError(err).Warn("worker task failed")
			}
		}
	}
}

// Stop signals the loop to exit and waits for it. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
}
