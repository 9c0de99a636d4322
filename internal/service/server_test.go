package service

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowResult struct {
	status int
	body   string
	err    error
}

// startSlowServer serves /slow, which signals started and answers after delay.
func startSlowServer(t *testing.T, delay time.Duration) (*Server, string, chan struct{}) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	started := make(chan struct{}, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		time.Sleep(delay)
		_, _ = io.WriteString(w, "done")
	})

	srv := NewServer(addr, mux, nopLogger)
	go func() { _ = srv.Start() }()

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return srv, addr, started
}

func getSlow(addr string) <-chan slowResult {
	out := make(chan slowResult, 1)
	go func() {
		resp, err := http.Get("http://" + addr + "/slow")
		if err != nil {
			out <- slowResult{err: err}
			return
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		out <- slowResult{status: resp.StatusCode, body: string(b), err: err}
	}()
	return out
}

func TestServerStopWithin_DrainsInFlightRequest(t *testing.T) {
	srv, addr, started := startSlowServer(t, 300*time.Millisecond)

	res := getSlow(addr)
	<-started

	require.NoError(t, srv.StopWithin(5*time.Second))

	got := <-res
	require.NoError(t, got.err)
	assert.Equal(t, http.StatusOK, got.status)
	assert.Equal(t, "done", got.body)
}

func TestServerStop_CancelledContextGivesUp(t *testing.T) {
	srv, addr, started := startSlowServer(t, 300*time.Millisecond)

	res := getSlow(addr)
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, srv.Stop(ctx), context.Canceled)

	// let the handler finish so the client goroutine exits
	<-res
}
