package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/pkg/eventbus"
)

func TestBus_GetOnce(t *testing.T) {
	t.Parallel()

	t.Run("evaluates once per topic and signal", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		var calls atomic.Int64
		bus.Register("tags", func(_ context.Context, e eventbus.Event) (any, error) {
			calls.Add(1)
			if e.Signal == nil {
				return "default", nil
			}
			return e.Signal, nil
		})

		ctx := context.Background()

		v, err := bus.GetOnce(ctx, eventbus.Event{Topic: "tags"})
		require.NoError(t, err)
		require.Equal(t, "default", v)

		v, err = bus.GetOnce(ctx, eventbus.Event{Topic: "tags"})
		require.NoError(t, err)
		require.Equal(t, "default", v)
		require.Equal(t, int64(1), calls.Load())

		v, err = bus.GetOnce(ctx, eventbus.Event{Topic: "tags", Signal: "admin"})
		require.NoError(t, err)
		require.Equal(t, "admin", v)
		require.Equal(t, int64(2), calls.Load())

		_, err = bus.GetOnce(ctx, eventbus.Event{Topic: "tags", Signal: "admin"})
		require.NoError(t, err)
		require.Equal(t, int64(2), calls.Load())
	})

	t.Run("memoizes errors", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		boom := errors.New("boom")
		var calls atomic.Int64
		bus.Register("t", func(context.Context, eventbus.Event) (any, error) {
			calls.Add(1)
			return nil, boom
		})

		ctx := context.Background()
		_, err := bus.GetOnce(ctx, eventbus.Event{Topic: "t"})
		require.ErrorIs(t, err, boom)
		_, err = bus.GetOnce(ctx, eventbus.Event{Topic: "t"})
		require.ErrorIs(t, err, boom)
		require.Equal(t, int64(1), calls.Load())
	})

	t.Run("concurrent first callers share one evaluation", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		var calls atomic.Int64
		bus.Register("t", func(context.Context, eventbus.Event) (any, error) {
			calls.Add(1)
			time.Sleep(10 * time.Millisecond)
			return "value", nil
		})

		var wg sync.WaitGroup
		results := make([]any, 32)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := bus.GetOnce(context.Background(), eventbus.Event{Topic: "t"})
				if err == nil {
					results[i] = v
				}
			}()
		}
		wg.Wait()

		require.Equal(t, int64(1), calls.Load())
		for _, v := range results {
			require.Equal(t, "value", v)
		}
	})
}

func TestBus_CallOnce(t *testing.T) {
	t.Parallel()

	t.Run("runs handlers once until reset", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		var calls atomic.Int64
		bus.Register("startup", func(context.Context, eventbus.Event) (any, error) {
			calls.Add(1)
			return nil, nil
		})

		ctx := context.Background()
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "startup"}))
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "startup"}))
		require.Equal(t, int64(1), calls.Load())

		bus.ResetOnce("startup")
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "startup"}))
		require.Equal(t, int64(2), calls.Load())

		bus.ResetAllOnce()
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "startup"}))
		require.Equal(t, int64(3), calls.Load())
	})

	t.Run("reset is scoped to one topic", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		var a, b atomic.Int64
		bus.Register("a", func(context.Context, eventbus.Event) (any, error) { a.Add(1); return nil, nil })
		bus.Register("ab", func(context.Context, eventbus.Event) (any, error) { b.Add(1); return nil, nil })

		ctx := context.Background()
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "a", Signal: 1}))
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "ab"}))

		bus.ResetOnce("a")
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "a", Signal: 1}))
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "ab"}))

		require.Equal(t, int64(2), a.Load())
		require.Equal(t, int64(1), b.Load())
	})

	t.Run("call and get memoize independently", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		var calls atomic.Int64
		bus.Register("t", func(context.Context, eventbus.Event) (any, error) {
			calls.Add(1)
			return "v", nil
		})

		ctx := context.Background()
		require.NoError(t, bus.CallOnce(ctx, eventbus.Event{Topic: "t"}))
		v, err := bus.GetOnce(ctx, eventbus.Event{Topic: "t"})
		require.NoError(t, err)
		require.Equal(t, "v", v)
		require.Equal(t, int64(2), calls.Load())
	})
}
