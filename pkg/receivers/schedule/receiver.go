// Package schedule drives schedule-triggered workflow definitions from cron
// expressions. Each active definition with trigger_type "schedule" gets its
// own cron entry; firing runs the definition through the engine.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/funilhq/funil/pkg/engine"
	"github.com/funilhq/funil/pkg/models"
	"github.com/funilhq/funil/pkg/storage"
)

// TriggerEvent is the event name recorded on schedule-started executions.
const TriggerEvent = "schedule"

type Receiver struct {
	logger      *slog.Logger
	definitions *storage.Definitions
	engine      *engine.Engine

	cron  *cron.Cron
	jobs  map[string]cron.EntryID // definition id -> entry
	mutex sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewReceiver(logger *slog.Logger, definitions *storage.Definitions, eng *engine.Engine) *Receiver {
	return &Receiver{
		logger:      logger.With("module", "schedule_receiver"),
		definitions: definitions,
		engine:      eng,
		jobs:        make(map[string]cron.EntryID),
	}
}

// Start loads every active schedule definition and begins firing them.
func (r *Receiver) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if err := r.Reload(ctx); err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("Schedule receiver started")

	return nil
}

// Reload re-reads the schedule definitions and replaces the cron entries.
// Call it after definitions change; running jobs finish undisturbed.
func (r *Receiver) Reload(ctx context.Context) error {
	defs, err := r.definitions.ActiveByTrigger(ctx, models.TriggerTypeSchedule)
	if err != nil {
		return fmt.Errorf("failed to load schedule definitions: %w", err)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for id, entryID := range r.jobs {
		r.cron.Remove(entryID)
		delete(r.jobs, id)
	}

	for _, def := range defs {
		if err := r.schedule(def); err != nil {
			r.logger.Error("Failed to schedule workflow",
				"workflow_id", def.ID, "cron", def.TriggerConfig.Cron, "error", err)

			continue
		}
	}

	r.logger.Info("Schedule definitions loaded", "count", len(r.jobs))

	return nil
}

func (r *Receiver) schedule(def *models.WorkflowDefinition) error {
	expr := def.TriggerConfig.Cron
	if expr == "" {
		return fmt.Errorf("workflow %s has no cron expression", def.ID)
	}

	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	entryID, err := r.cron.AddFunc(expr, func() {
		r.fire(def)
	})
	if err != nil {
		return err
	}

	r.jobs[def.ID] = entryID
	r.logger.Info("Scheduled workflow", "workflow_id", def.ID, "cron", expr)

	return nil
}

func (r *Receiver) fire(def *models.WorkflowDefinition) {
	now := time.Now().UTC()
	payload := map[string]any{
		"fired_at": now.Format(time.RFC3339),
		"cron":     def.TriggerConfig.Cron,
	}

	result, err := r.engine.RunOnce(r.ctx, def, TriggerEvent, payload)
	if err != nil {
		r.logger.Error("Scheduled run aborted", "workflow_id", def.ID, "error", err)

		return
	}

	if !result.Success {
		r.logger.Warn("Scheduled run failed",
			"workflow_id", def.ID, "execution_id", result.ExecutionID, "error", result.Error)
	}
}

func (r *Receiver) Stop(_ context.Context) error {
	r.logger.Info("Stopping schedule receiver")

	if r.cancel != nil {
		r.cancel()
	}

	if r.cron != nil {
		<-r.cron.Stop().Done()
	}

	r.mutex.Lock()
	r.jobs = make(map[string]cron.EntryID)
	r.mutex.Unlock()

	return nil
}
