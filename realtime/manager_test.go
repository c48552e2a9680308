package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	ch  chan struct{}
	err error
	mu  sync.Mutex
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan struct{}, 16)}
}

func (f *fakeNotifier) Changes(ctx context.Context) (<-chan struct{}, error) {
	return f.ch, nil
}

func (f *fakeNotifier) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeNotifier) failWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	close(f.ch)
}

func (f *fakeNotifier) notify() {
	f.ch <- struct{}{}
}

// counterFetch returns an incrementing generation marker per call.
type counterFetch struct {
	mu    sync.Mutex
	calls int
}

func (c *counterFetch) fetch(ctx context.Context) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return []int{c.calls}, nil
}

func TestSubscribe(t *testing.T) {
	t.Run("delivers an initial snapshot without any change", func(t *testing.T) {
		n := newFakeNotifier()
		cf := &counterFetch{}

		sub, err := Subscribe(context.Background(), n, cf.fetch)
		require.NoError(t, err)
		defer sub.Close()

		snap := <-sub.Updates()
		require.NoError(t, snap.Err)
		assert.Equal(t, []int{1}, snap.Docs)
	})

	t.Run("re-fetches on change and replaces the snapshot wholesale", func(t *testing.T) {
		n := newFakeNotifier()
		cf := &counterFetch{}

		sub, err := Subscribe(context.Background(), n, cf.fetch)
		require.NoError(t, err)
		defer sub.Close()

		snap := <-sub.Updates()
		assert.Equal(t, []int{1}, snap.Docs)

		n.notify()
		snap = <-sub.Updates()
		require.NoError(t, snap.Err)
		assert.Equal(t, []int{2}, snap.Docs)
	})

	t.Run("slow consumer only observes the most recent snapshot", func(t *testing.T) {
		n := newFakeNotifier()
		cf := &counterFetch{}

		sub, err := Subscribe(context.Background(), n, cf.fetch)
		require.NoError(t, err)
		defer sub.Close()

		// Let generations pile up while nobody reads.
		for i := 0; i < 5; i++ {
			n.notify()
		}
		require.Eventually(t, func() bool {
			cf.mu.Lock()
			defer cf.mu.Unlock()
			return cf.calls == 6 // initial + 5 changes
		}, time.Second, 5*time.Millisecond)

		// All six fetches are done; anything older than the 5th
		// generation must have been replaced, never queued.
		snap := <-sub.Updates()
		require.NoError(t, snap.Err)
		require.NotEmpty(t, snap.Docs)
		assert.GreaterOrEqual(t, snap.Docs[0], 5, "intermediate snapshots must be dropped, not queued")
	})

	t.Run("close tears the subscription down", func(t *testing.T) {
		n := newFakeNotifier()
		cf := &counterFetch{}

		sub, err := Subscribe(context.Background(), n, cf.fetch)
		require.NoError(t, err)

		sub.Close()
		require.Eventually(t, func() bool {
			select {
			case _, ok := <-sub.Updates():
				return !ok
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond, "updates channel must close after teardown")
	})

	t.Run("context cancel tears the subscription down", func(t *testing.T) {
		n := newFakeNotifier()
		cf := &counterFetch{}

		ctx, cancel := context.WithCancel(context.Background())
		sub, err := Subscribe(ctx, n, cf.fetch)
		require.NoError(t, err)

		cancel()
		require.Eventually(t, func() bool {
			select {
			case _, ok := <-sub.Updates():
				return !ok
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("listener failure surfaces the error and ends the stream", func(t *testing.T) {
		n := newFakeNotifier()
		cf := &counterFetch{}
		boom := errors.New("listener lost")

		sub, err := Subscribe(context.Background(), n, cf.fetch)
		require.NoError(t, err)

		n.failWith(boom)

		var last Snapshot[int]
		for snap := range sub.Updates() {
			last = snap
		}
		assert.ErrorIs(t, last.Err, boom)
	})

	t.Run("fetch failure is surfaced without killing the subscription", func(t *testing.T) {
		n := newFakeNotifier()
		failing := true
		var mu sync.Mutex
		fetch := func(ctx context.Context) ([]int, error) {
			mu.Lock()
			defer mu.Unlock()
			if failing {
				return nil, errors.New("query failed")
			}
			return []int{42}, nil
		}

		sub, err := Subscribe(context.Background(), n, fetch)
		require.NoError(t, err)
		defer sub.Close()

		snap := <-sub.Updates()
		require.Error(t, snap.Err)

		mu.Lock()
		failing = false
		mu.Unlock()

		n.notify()
		snap = <-sub.Updates()
		require.NoError(t, snap.Err)
		assert.Equal(t, []int{42}, snap.Docs)
	})
}
