package delay

import (
	"context"
	"testing"
	"time"

	"github.com/funilhq/funil/pkg/models"
)

func TestDelayNode_Waits(t *testing.T) {
	node, err := NewDelayNode(&models.WorkflowNode{
		ID:   "d1",
		Type: models.NodeTypeDelay,
		Data: map[string]any{"delay_value": float64(0.05), "delay_unit": "seconds"},
	}, time.Second)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	start := time.Now()
	result := node.Execute(context.Background(), nil, &models.ExecutionContext{})
	elapsed := time.Since(start)

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if elapsed < 40*time.Millisecond {
		t.Errorf("Expected at least 40ms of delay, got: %v", elapsed)
	}

	if result.Output["capped"] != false {
		t.Errorf("Expected uncapped delay, got: %v", result.Output["capped"])
	}
}

func TestDelayNode_CapsLongDelays(t *testing.T) {
	node, err := NewDelayNode(&models.WorkflowNode{
		ID:   "d1",
		Type: models.NodeTypeDelay,
		Data: map[string]any{"delay_value": float64(30), "delay_unit": "days"},
	}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	start := time.Now()
	result := node.Execute(context.Background(), nil, &models.ExecutionContext{})
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Fatalf("Expected capped delay, blocked for: %v", elapsed)
	}

	if result.Output["capped"] != true {
		t.Errorf("Expected capped=true, got: %v", result.Output["capped"])
	}

	if result.Output["delayed_ms"] != int64(20) {
		t.Errorf("Expected delayed_ms 20, got: %v", result.Output["delayed_ms"])
	}
}

func TestDelayNode_MissingConfigIsZeroDelay(t *testing.T) {
	node, err := NewDelayNode(&models.WorkflowNode{
		ID:   "d1",
		Type: models.NodeTypeDelay,
		Data: map[string]any{},
	}, time.Second)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	result := node.Execute(context.Background(), nil, &models.ExecutionContext{})
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if result.Output["delayed_ms"] != int64(0) {
		t.Errorf("Expected zero delay, got: %v ms", result.Output["delayed_ms"])
	}
}

func TestDelayNode_ContextCancellation(t *testing.T) {
	node, err := NewDelayNode(&models.WorkflowNode{
		ID:   "d1",
		Type: models.NodeTypeDelay,
		Data: map[string]any{"delay_value": float64(5), "delay_unit": "seconds"},
	}, 10*time.Second)
	if err != nil {
		t.Fatalf("Failed to create node: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	result := node.Execute(ctx, nil, &models.ExecutionContext{})

	if time.Since(start) > time.Second {
		t.Fatal("Expected cancelled context to unblock the delay")
	}

	if !result.Success {
		t.Errorf("Expected success after cancellation, got error: %s", result.Error)
	}
}
