package internal_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/internal"
)

func TestApp_Run(t *testing.T) {
	t.Parallel()

	t.Run("serves until the context is cancelled", func(t *testing.T) {
		t.Parallel()

		app, err := internal.New(
			internal.WithHealthChecks(),
			internal.WithModules(newModule("m", func(r internal.Router) {
				r.GET("/", text("hi"), internal.Name("home"))
			})),
		)
		require.NoError(t, err)

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		base := "http://" + ln.Addr().String()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var started, stopped atomic.Bool
		done := make(chan error, 1)
		go func() {
			done <- app.Run("",
				internal.WithListener(ln),
				internal.WithContext(ctx),
				internal.DrainDelay(300*time.Millisecond),
				internal.ShutdownTimeout(time.Second),
				internal.StartupHook(func(context.Context) error { started.Store(true); return nil }),
				internal.ShutdownHook(func(context.Context) error { stopped.Store(true); return nil }),
			)
		}()

		status := func(path string) int {
			resp, err := http.Get(base + path)
			if err != nil {
				return 0
			}
			defer resp.Body.Close()
			return resp.StatusCode
		}

		require.Eventually(t, func() bool { return status("/") == http.StatusOK }, 2*time.Second, 10*time.Millisecond)
		require.True(t, started.Load())
		require.Equal(t, http.StatusOK, status("/health/ready"))

		cancel()
		require.Eventually(t, app.Draining, time.Second, 5*time.Millisecond)
		require.Equal(t, http.StatusServiceUnavailable, status("/health/ready"))

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("Run did not return")
		}
		require.True(t, stopped.Load())
	})

	t.Run("startup hook failure aborts", func(t *testing.T) {
		t.Parallel()

		app, err := internal.New()
		require.NoError(t, err)

		boom := errors.New("boom")
		err = app.Run("127.0.0.1:0", internal.StartupHook(func(context.Context) error { return boom }))
		require.ErrorIs(t, err, boom)
	})

	t.Run("shutdown hook errors are returned", func(t *testing.T) {
		t.Parallel()

		app, err := internal.New()
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		boom := errors.New("close failed")
		err = app.Run("127.0.0.1:0",
			internal.WithContext(ctx),
			internal.ShutdownHook(func(context.Context) error { return boom }),
		)
		require.ErrorIs(t, err, boom)
	})
}
