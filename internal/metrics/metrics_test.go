package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusSink_RecordsCounterAndHistogram(t *testing.T) {
	sink := NewPrometheusSink(nil)
	sink.Record("router.decision", map[string]string{"strategy": "classic"}, 0.2)
	sink.Record("router.decision", map[string]string{"strategy": "classic"}, 0.4)

	families, err := sink.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "fabric_router_decision_total" {
			found = true
			require.Len(t, f.Metric, 1)
			assert.Equal(t, float64(2), f.Metric[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "expected counter family to be registered")
}

func TestPrometheusSink_SanitizesEventNames(t *testing.T) {
	assert.Equal(t, "router_decision", sanitize("router.decision"))
}
