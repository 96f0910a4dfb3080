package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	calls int
	fail  bool
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	f.calls++
	if f.fail {
		return CompletionResponse{}, errors.New("provider unavailable")
	}
	return CompletionResponse{Content: "ok"}, nil
}

func TestFallbackCompleter_FirstProviderSucceeds(t *testing.T) {
	primary := &fakeCompleter{}
	secondary := &fakeCompleter{}

	f := NewFallbackCompleter(map[string]Completer{
		"primary":   primary,
		"secondary": secondary,
	}, []string{"primary", "secondary"}, 3, time.Minute)

	resp, err := f.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackCompleter_FallsBackOnFailure(t *testing.T) {
	primary := &fakeCompleter{fail: true}
	secondary := &fakeCompleter{}

	f := NewFallbackCompleter(map[string]Completer{
		"primary":   primary,
		"secondary": secondary,
	}, []string{"primary", "secondary"}, 3, time.Minute)

	resp, err := f.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackCompleter_OpensBreakerAfterThreshold(t *testing.T) {
	primary := &fakeCompleter{fail: true}
	secondary := &fakeCompleter{}

	f := NewFallbackCompleter(map[string]Completer{
		"primary":   primary,
		"secondary": secondary,
	}, []string{"primary", "secondary"}, 2, time.Hour)

	for i := 0; i < 2; i++ {
		_, err := f.Complete(context.Background(), CompletionRequest{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, primary.calls)

	// Third call should skip primary entirely since its breaker is now open.
	_, err := f.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, primary.calls)
}

func TestFallbackCompleter_AllProvidersFail(t *testing.T) {
	primary := &fakeCompleter{fail: true}
	f := NewFallbackCompleter(map[string]Completer{"primary": primary}, []string{"primary"}, 3, time.Minute)

	_, err := f.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)
}
