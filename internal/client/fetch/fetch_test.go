package fetch

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_StartsIdle(t *testing.T) {
	f := New[[]string](nil)

	assert.Equal(t, PhaseIdle, f.State().Phase)
	_, ok := f.Data()
	assert.False(t, ok)
}

func TestFetcher_ResolveEndsInSuccess(t *testing.T) {
	f := New[[]string](nil)

	f.Start(context.Background(), func(ctx context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})

	st := f.State()
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, []string{"a", "b"}, st.Data)
	assert.Equal(t, "", st.ErrorMessage)

	data, ok := f.Data()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, data)
}

func TestFetcher_RejectEndsInFixedErrorMessage(t *testing.T) {
	f := New[int](nil)

	f.Start(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("connection reset by peer")
	})

	st := f.State()
	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, FailureMessage, st.ErrorMessage)
	assert.NotContains(t, st.ErrorMessage, "connection reset", "raw error text must never reach the view")

	_, ok := f.Data()
	assert.False(t, ok, "data must not be readable outside success")
}

func TestFetcher_LoadingPrecedesDispatch(t *testing.T) {
	f := New[int](nil)

	var phases []Phase
	f.Subscribe(func(st State[int]) { phases = append(phases, st.Phase) })

	var phaseAtDispatch Phase
	f.Start(context.Background(), func(ctx context.Context) (int, error) {
		phaseAtDispatch = f.State().Phase
		return 1, nil
	})

	assert.Equal(t, PhaseLoading, phaseAtDispatch)
	assert.Equal(t, []Phase{PhaseLoading, PhaseSuccess}, phases)
}

func TestFetcher_RefetchDiscardsPreviousOutcome(t *testing.T) {
	f := New[int](nil)
	ctx := context.Background()

	f.Start(ctx, func(context.Context) (int, error) { return 0, errors.New("boom") })
	require.Equal(t, PhaseError, f.State().Phase)

	f.Start(ctx, func(context.Context) (int, error) { return 42, nil })

	st := f.State()
	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, 42, st.Data)
	assert.Equal(t, "", st.ErrorMessage, "old error must be discarded")
}

func TestFetcher_SecondStartWins(t *testing.T) {
	f := New[string](nil)
	ctx := context.Background()

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.Start(ctx, func(context.Context) (string, error) {
			<-release
			return "first", nil
		})
	}()

	// Wait for the first Start to be in flight.
	for f.State().Phase != PhaseLoading {
		runtime.Gosched()
	}

	f.Start(ctx, func(context.Context) (string, error) { return "second", nil })
	close(release)
	wg.Wait()

	data, ok := f.Data()
	require.True(t, ok)
	assert.Equal(t, "second", data, "stale settlement must not overwrite the newer one")
}

func TestFetcher_CloseDropsPendingSettlement(t *testing.T) {
	f := New[string](nil)

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.Start(context.Background(), func(context.Context) (string, error) {
			<-release
			return "late", nil
		})
	}()

	for f.State().Phase != PhaseLoading {
		runtime.Gosched()
	}

	f.Close()
	close(release)
	wg.Wait()

	_, ok := f.Data()
	assert.False(t, ok, "settlement after unmount must not be written")
}

func TestFetcher_StartAfterCloseIsNoop(t *testing.T) {
	f := New[int](nil)
	f.Close()

	called := false
	f.Start(context.Background(), func(context.Context) (int, error) {
		called = true
		return 1, nil
	})

	assert.False(t, called)
	assert.Equal(t, PhaseIdle, f.State().Phase)
}

func TestFetcher_IndependentInstancesDoNotInterfere(t *testing.T) {
	a := New[int](nil)
	b := New[int](nil)
	ctx := context.Background()

	a.Start(ctx, func(context.Context) (int, error) { return 1, nil })
	b.Start(ctx, func(context.Context) (int, error) { return 0, errors.New("boom") })

	assert.Equal(t, PhaseSuccess, a.State().Phase)
	assert.Equal(t, PhaseError, b.State().Phase)
}
