package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Listen binds host on the first free port among ports, in order. It
// returns the listener and the port it got.
func Listen(ctx context.Context, host string, ports []int) (net.Listener, int, error) {
	if len(ports) == 0 {
		return nil, 0, eris.New("server: no ports to try")
	}
	var lc net.ListenConfig
	var lastErr error
	for _, port := range ports {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			zap.L().Warn("server: port unavailable", zap.String("addr", addr), zap.Error(err))
			lastErr = err
			continue
		}
		return ln, ln.Addr().(*net.TCPAddr).Port, nil
	}
	return nil, 0, eris.Wrapf(lastErr, "server: no free port on %s among %v", host, ports)
}

// Serve runs h on ln until ctx ends, then drains in-flight requests for up
// to drain before returning.
func Serve(ctx context.Context, ln net.Listener, h http.Handler, drain time.Duration) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server: serve")
	case <-ctx.Done():
	}

	zap.L().Info("server: shutting down", zap.Duration("drain", drain))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}
