package httpserver_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewenunessn/gestaoescolar-sub010/pkg/httpserver"
)

func freeAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func get(t *testing.T, addr string) (*http.Response, error) {
	t.Helper()

	var resp *http.Response
	var err error
	for range 50 {
		resp, err = http.Get("http://" + addr)
		if err == nil {
			return resp, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil, err
}

func TestRunAndShutdown(t *testing.T) {
	t.Parallel()

	cfg := httpserver.Config{
		Addr:            freeAddr(t),
		ShutdownTimeout: 100 * time.Millisecond,
	}
	srv := httpserver.New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	}()

	resp, err := get(t, cfg.Addr)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestRunTwiceFails(t *testing.T) {
	t.Parallel()

	cfg := httpserver.Config{
		Addr:            freeAddr(t),
		ShutdownTimeout: 100 * time.Millisecond,
	}
	srv := httpserver.New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()

	resp, err := get(t, cfg.Addr)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	err = srv.Run(ctx, nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)

	cancel()
	<-done
}

func TestShutdownBeforeRun(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.Config{Addr: freeAddr(t)}, nil)
	assert.NoError(t, srv.Shutdown(context.Background()))
}
