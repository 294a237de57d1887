package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEvent_SetThenWaitReturnsImmediately(t *testing.T) {
	e := New()
	defer e.Close()

	e.Set()

	done := make(chan error, 1)
	go func() { done <- e.Wait(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return for an already-signalled event")
	}
}

func TestEvent_WaitBlocksUntilSet(t *testing.T) {
	e := New()
	defer e.Close()

	done := make(chan error, 1)
	go func() { done <- e.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned before Set")
	case <-time.After(20 * time.Millisecond):
	}

	e.Set()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake after Set")
	}
}

func TestEvent_ClearResetsSignal(t *testing.T) {
	e := New()
	defer e.Close()

	e.Set()
	e.Clear()

	done := make(chan error, 1)
	go func() { done <- e.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned after Clear with no Set")
	case <-time.After(20 * time.Millisecond):
	}

	e.Set()
	require.NoError(t, <-done)
}

func TestEvent_WaitCancelledByContext(t *testing.T) {
	e := New()
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := e.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvent_CoalescedSets(t *testing.T) {
	e := New()
	defer e.Close()

	e.Set()
	e.Set()
	e.Set()

	require.NoError(t, e.Wait(context.Background()))
}
