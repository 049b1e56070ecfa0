package server

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"github.com/vitalvas/strela/internal/config"
)

func testConfig(h2cEnabled bool) config.ServerConfig {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"
	cfg.H2C = h2cEnabled
	cfg.ShutdownTimeout = time.Second

	return cfg
}

func start(t *testing.T, srv *Server) (string, context.CancelFunc, <-chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	return "http://" + ln.Addr().String(), cancel, done
}

func waitStopped(t *testing.T, done <-chan error) {
	t.Helper()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Proto))
	})

	t.Run("http/1.1 and graceful stop", func(t *testing.T) {
		url, cancel, done := start(t, New(testConfig(false), handler, logger))

		resp, err := http.Get(url + "/")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		assert.Equal(t, "HTTP/1.1", string(body))

		cancel()
		waitStopped(t, done)
	})

	t.Run("cleartext http/2", func(t *testing.T) {
		url, cancel, done := start(t, New(testConfig(true), handler, logger))
		defer func() {
			cancel()
			waitStopped(t, done)
		}()

		client := &http.Client{Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		}}

		resp, err := client.Get(url + "/")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, 2, resp.ProtoMajor)
	})

	t.Run("in-flight request completes", func(t *testing.T) {
		entered := make(chan struct{})
		slow := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			close(entered)
			time.Sleep(100 * time.Millisecond)
			w.Write([]byte("finished"))
		})

		url, cancel, done := start(t, New(testConfig(false), slow, logger))

		result := make(chan string, 1)
		go func() {
			resp, err := http.Get(url + "/")
			if err != nil {
				result <- err.Error()
				return
			}
			defer resp.Body.Close()
			b, _ := io.ReadAll(resp.Body)
			result <- string(b)
		}()

		<-entered
		cancel()

		assert.Equal(t, "finished", <-result)
		waitStopped(t, done)
	})

	t.Run("run fails on bad address", func(t *testing.T) {
		cfg := testConfig(false)
		cfg.Addr = "127.0.0.1:99999"

		err := New(cfg, handler, logger).Run(context.Background())
		assert.ErrorContains(t, err, "server: listen")
	})
}
