package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rivega42/hybrid-rag-system/models"
)

func TestOracle_AvailableByDefault(t *testing.T) {
	o := New(Config{})
	assert.True(t, o.Available(context.Background(), models.StrategyClassic))
}

func TestOracle_ReserveTripsBreakerAfterThreshold(t *testing.T) {
	o := New(Config{BreakerThreshold: 2, BreakerCooldown: time.Hour})

	for i := 0; i < 2; i++ {
		release, err := o.Reserve(context.Background(), models.StrategyAgentic)
		require.NoError(t, err)
		release(assertErr{})
	}

	assert.False(t, o.Available(context.Background(), models.StrategyAgentic))

	_, err := o.Reserve(context.Background(), models.StrategyAgentic)
	require.Error(t, err)
	var fabricErr *models.FabricError
	require.ErrorAs(t, err, &fabricErr)
	assert.Equal(t, models.ErrResourceUnavailable, fabricErr.Code)
}

func TestOracle_BreakerRecoversAfterCooldown(t *testing.T) {
	o := New(Config{BreakerThreshold: 1, BreakerCooldown: time.Millisecond})

	release, err := o.Reserve(context.Background(), models.StrategyHybrid)
	require.NoError(t, err)
	release(assertErr{})

	assert.False(t, o.Available(context.Background(), models.StrategyHybrid))

	time.Sleep(5 * time.Millisecond)
	assert.True(t, o.Available(context.Background(), models.StrategyHybrid))
}

func TestOracle_RateLimiterCapsBurst(t *testing.T) {
	o := New(Config{
		RequestsPerSecond: map[models.Strategy]float64{models.StrategyCache: 1},
		Burst:             map[models.Strategy]int{models.StrategyCache: 1},
	})

	assert.True(t, o.Available(context.Background(), models.StrategyCache))
	assert.False(t, o.Available(context.Background(), models.StrategyCache))
}

type assertErr struct{}

func (assertErr) Error() string { return "execution failed" }
