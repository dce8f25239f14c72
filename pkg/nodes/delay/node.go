// Package delay provides the suspension node. The computed delay is capped
// so a misconfigured node cannot stall a run indefinitely; long production
// waits belong in a durable scheduler, not an in-process sleep.
package delay

import (
	"context"
	"time"

	"github.com/funilhq/funil/pkg/models"
)

// DefaultMaxDelay bounds run latency when no cap is configured.
const DefaultMaxDelay = 10 * time.Second

type DelayNode struct {
	id       string
	duration time.Duration
	capped   bool
}

func NewDelayNode(node *models.WorkflowNode, maxDelay time.Duration) (*DelayNode, error) {
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	value := toFloat(node.Data["delay_value"])

	unit := time.Second
	if u, ok := node.Data["delay_unit"].(string); ok {
		switch u {
		case "minutes":
			unit = time.Minute
		case "hours":
			unit = time.Hour
		case "days":
			unit = 24 * time.Hour
		}
	}

	duration := time.Duration(value * float64(unit))

	capped := false
	if duration > maxDelay {
		duration = maxDelay
		capped = true
	}

	if duration < 0 {
		duration = 0
	}

	return &DelayNode{id: node.ID, duration: duration, capped: capped}, nil
}

// Execute blocks the current run's coordinator loop only; other runs are
// unaffected. It never fails.
func (n *DelayNode) Execute(ctx context.Context, _ *models.Flow, _ *models.ExecutionContext) *models.NodeResult {
	if n.duration > 0 {
		timer := time.NewTimer(n.duration)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}

	return &models.NodeResult{
		Success: true,
		Output: map[string]any{
			"delayed_ms": n.duration.Milliseconds(),
			"capped":     n.capped,
		},
	}
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
