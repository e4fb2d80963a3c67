// Package httpserver runs the HTTP surfaces (MCP tool servers and the A2A
// agent) with a shared middleware chain and graceful shutdown.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/justinas/alice"

	"github.com/hupe1980/casemesh/logging"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = time.Second
	idleTimeout            = time.Minute
)

// Options configures Serve.
type Options struct {
	// Listener overrides net.Listen on the address (tests bind ":0").
	Listener net.Listener
	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger receives lifecycle and request events.
	Logger logging.Logger
	// Ready, if set, is called with the bound address before serving.
	Ready func(addr string)
}

// Serve listens on addr and serves handler until ctx is cancelled, then
// shuts down gracefully. A clean shutdown returns nil.
func Serve(ctx context.Context, addr string, handler http.Handler, optFns ...func(o *Options)) error {
	opts := Options{
		ShutdownTimeout: defaultShutdownTimeout,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	listener := opts.Listener
	if listener == nil {
		var err error
		if listener, err = net.Listen("tcp", addr); err != nil {
			return fmt.Errorf("tcp listen %s: %w", addr, err)
		}
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	shutdownErr := make(chan error, 1)

	go func() {
		<-ctx.Done()
		opts.Logger.Info("http.server.shutdown", "addr", listener.Addr().String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
		defer cancel()

		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	opts.Logger.Info("http.server.start", "addr", listener.Addr().String())

	if opts.Ready != nil {
		opts.Ready(listener.Addr().String())
	}

	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	opts.Logger.Info("http.server.stopped", "addr", listener.Addr().String())

	return nil
}

// Chain returns the standard middleware chain: panic recovery outermost,
// then request logging.
func Chain(logger logging.Logger) alice.Chain {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return alice.New(RecoverPanic(logger), LogRequest(logger))
}

// LogRequest logs every request at debug level.
func LogRequest(logger logging.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Debug("http.request",
				"method", r.Method,
				"uri", r.URL.RequestURI(),
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// RecoverPanic turns a handler panic into a 500 response.
func RecoverPanic(logger logging.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("http.request.panic", "uri", r.URL.RequestURI(), "panic", fmt.Sprint(rec))
					w.Header().Set("Connection", "close")
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Health returns a handler answering {"status":"ok","service":name}.
func Health(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "service": name})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working behind the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
