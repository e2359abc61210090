// Package workflow drives background processing of the catalog: a polling
// loop that picks up pending heritage items and runs them through the
// pipeline one at a time.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"muraai/internal/config"
	"muraai/internal/heritage"
	"muraai/internal/logging"
	"muraai/internal/pipeline"
)

// ItemSource supplies the next pending item to process.
type ItemSource interface {
	NextForStatuses(ctx context.Context, statuses ...heritage.Status) (*heritage.Item, error)
}

// Processor runs the pipeline for one item.
type Processor interface {
	Process(ctx context.Context, id string) pipeline.Outcome
}

// Manager owns the background processing loop.
type Manager struct {
	source    ItemSource
	processor Processor
	logger    *slog.Logger

	pollInterval  time.Duration
	retryInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager builds a manager with intervals from the configuration.
func NewManager(cfg *config.Config, source ItemSource, processor Processor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	pollInterval := 5 * time.Second
	retryInterval := 10 * time.Second
	if cfg != nil {
		if cfg.Workflow.QueuePollInterval > 0 {
			pollInterval = time.Duration(cfg.Workflow.QueuePollInterval) * time.Second
		}
		if cfg.Workflow.ErrorRetryInterval > 0 {
			retryInterval = time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second
		}
	}
	return &Manager{
		source:        source,
		processor:     processor,
		logger:        logger.With(logging.String(logging.FieldComponent, "workflow")),
		pollInterval:  pollInterval,
		retryInterval: retryInterval,
	}
}

// Start launches the processing loop. Starting a running manager is an
// error.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow manager already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(runCtx)
	}()

	m.logger.Info("workflow started",
		logging.Duration("poll_interval", m.pollInterval),
		logging.Duration("retry_interval", m.retryInterval))
	return nil
}

// Stop cancels the loop and waits for the in-flight item to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("workflow stopped")
}

// Running reports whether the loop is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		processed, err := m.ProcessNext(ctx)
		switch {
		case err != nil:
			m.logger.Error("poll failed", logging.Error(err))
			if !m.wait(ctx, m.retryInterval) {
				return
			}
		case processed:
			// Drain the backlog without waiting between items.
		default:
			if !m.wait(ctx, m.pollInterval) {
				return
			}
		}
	}
}

// ProcessNext picks up the oldest pending item and processes it. It
// reports whether an item was found; pipeline failures are recorded on
// the item and do not surface as errors here.
func (m *Manager) ProcessNext(ctx context.Context) (bool, error) {
	item, err := m.source.NextForStatuses(ctx, heritage.StatusPending)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}

	outcome := m.processor.Process(ctx, item.ID)
	if outcome.Succeeded() {
		m.logger.Info("item processed",
			logging.String(logging.FieldItemID, item.ID),
			logging.String(logging.FieldStatus, string(heritage.StatusCompleted)))
	} else {
		m.logger.Warn("item failed",
			logging.String(logging.FieldItemID, item.ID),
			logging.String(logging.FieldStage, string(outcome.Failure.Stage)),
			logging.Error(outcome.Failure.Err))
	}
	return true, nil
}

func (m *Manager) wait(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		delay = time.Second
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
