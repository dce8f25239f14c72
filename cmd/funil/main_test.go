package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// Runs the dispatch subcommand against the in-memory store, covering the
// full bootstrap-dispatch-teardown path of the shared runtime.
func TestDispatchCommandRunsAgainstMemoryStore(t *testing.T) {
	err := rootCommand().Run(context.Background(), []string{
		"funil", "dispatch",
		"--event", "lead_created",
		"--entity-type", "lead",
		"--entity-id", "L1",
		"--payload", `{"name": "Dana"}`,
	})
	require.NoError(t, err)
}

func TestDispatchCommandRejectsMalformedPayload(t *testing.T) {
	err := rootCommand().Run(context.Background(), []string{
		"funil", "dispatch",
		"--event", "lead_created",
		"--payload", "not json",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "payload must be a JSON object")
}
