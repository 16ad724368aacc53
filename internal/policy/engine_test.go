package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyAllowsCatalogFunctions(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)

	for _, name := range []string{"end_call", "book_appointment"} {
		decision, err := engine.Evaluate(context.Background(), map[string]interface{}{
			"function_name": name,
			"after_hours":   true,
		})
		require.NoError(t, err)
		assert.Equal(t, DecisionAllow, decision, name)
	}
}

func TestDefaultPolicyBlocksAfterHoursTransfer(t *testing.T) {
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)

	decision, err := engine.Evaluate(context.Background(), map[string]interface{}{
		"function_name": "transfer_call",
		"after_hours":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, decision)

	decision, err = engine.Evaluate(context.Background(), map[string]interface{}{
		"function_name": "transfer_call",
		"after_hours":   false,
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestInvalidPolicyFailsToPrepare(t *testing.T) {
	_, err := NewEngine(context.Background(), "not rego at all {")
	assert.Error(t, err)
}
