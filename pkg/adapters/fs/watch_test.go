package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, events <-chan Event, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				t.Fatal("events channel closed early")
			}
			if match(e) {
				return e
			}
		case <-timeout:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestSuite_Watch(t *testing.T) {
	suite, svc := newTestSuite(t)
	writeCase(t, suite.Path, "pass.json", passingCase)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := suite.Watch(ctx, svc)
	require.NoError(t, err)

	t.Run("Initial Pass", func(t *testing.T) {
		e := waitForEvent(t, events, func(e Event) bool {
			return e.Type == EventVerify && e.Path == "pass.json"
		})
		require.NotNil(t, e.Result)
		assert.True(t, e.Result.Passed())
		assert.True(t, suite.State().(SuiteState).WatcherActive)
	})

	t.Run("Write Revalidates", func(t *testing.T) {
		writeCase(t, suite.Path, "pass.json", failingCase)

		e := waitForEvent(t, events, func(e Event) bool {
			return e.Type == EventVerify && e.Path == "pass.json" && !e.Result.Passed()
		})
		assert.Equal(t, "VERIFY pass.json FAIL", e.String())
	})

	t.Run("New Directory Is Watched", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(suite.Path, "deep"), 0755))
		// Give the watcher a moment to register the new directory.
		time.Sleep(100 * time.Millisecond)
		writeCase(t, suite.Path, "deep/new.json", passingCase)

		waitForEvent(t, events, func(e Event) bool {
			return e.Type == EventVerify && e.Path == "deep/new.json"
		})
	})

	t.Run("Remove Emits Delete", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(suite.Path, "pass.json")))

		e := waitForEvent(t, events, func(e Event) bool {
			return e.Path == "pass.json" && e.Type == EventDelete
		})
		assert.Nil(t, e.Result)
	})

	t.Run("Ignores Non Case Files", func(t *testing.T) {
		writeCase(t, suite.Path, "readme.txt", "hello")
		writeCase(t, suite.Path, "marker.json", passingCase)

		var seen []string
		waitForEvent(t, events, func(e Event) bool {
			seen = append(seen, e.Path)
			return e.Path == "marker.json"
		})
		assert.NotContains(t, seen, "readme.txt")
	})

	cancel()

	t.Run("Closes On Cancel", func(t *testing.T) {
		timeout := time.After(6 * time.Second)
		for {
			select {
			case _, ok := <-events:
				if !ok {
					assert.Eventually(t, func() bool {
						return !suite.State().(SuiteState).WatcherActive
					}, time.Second, 10*time.Millisecond)
					return
				}
			case <-timeout:
				t.Fatal("events channel was not closed")
			}
		}
	})
}

func TestSuite_WatchCancelledContext(t *testing.T) {
	suite, svc := newTestSuite(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.Watch(ctx, svc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDebouncer(t *testing.T) {
	t.Run("Coalesces Bursts", func(t *testing.T) {
		d := newDebouncer(30 * time.Millisecond)
		var calls, last atomic.Int32

		for i := 1; i <= 5; i++ {
			n := int32(i)
			d.add("k", func() {
				calls.Add(1)
				last.Store(n)
			})
		}

		assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, int32(5), last.Load())
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		d := newDebouncer(10 * time.Millisecond)
		var calls atomic.Int32

		d.add("a", func() { calls.Add(1) })
		d.add("b", func() { calls.Add(1) })

		assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	})

	t.Run("Stop Drops Pending Work", func(t *testing.T) {
		d := newDebouncer(time.Hour)
		var calls atomic.Int32

		d.add("a", func() { calls.Add(1) })
		d.stopAndWait(time.Second)
		d.add("b", func() { calls.Add(1) })

		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestWatchWorker_DeliverAfterStop(t *testing.T) {
	suite, svc := newTestSuite(t)
	events := make(chan Event)
	w := newWatchWorker(suite, svc, events)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	// Drain until the worker closes the channel.
	timeout := time.After(6 * time.Second)
drain:
	for {
		select {
		case _, ok := <-events:
			if !ok {
				break drain
			}
		case <-timeout:
			t.Fatal("events channel was not closed")
		}
	}

	// A verification that outlived the worker must neither panic nor block.
	delivered := make(chan struct{})
	go func() {
		w.deliver(context.Background(), Event{Type: EventVerify, Path: "late.json"})
		close(delivered)
	}()
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked after stop")
	}
}
