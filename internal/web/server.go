// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"go.astrophena.name/linguabot/internal/cli"
	"go.astrophena.name/linguabot/internal/logger"
)

// Middleware is a function that wraps an [http.Handler] with additional
// behavior.
type Middleware func(http.Handler) http.Handler

// Server is an HTTP server.
//
// All fields of Server can't be modified after [Server.ListenAndServe] is
// called.
type Server struct {
	// Addr is a network address to listen on (in the form of "host:port").
	Addr string
	// Mux is a http.ServeMux to serve.
	Mux *http.ServeMux
	// Debuggable specifies whether to register debug handlers at /debug/.
	Debuggable bool
	// DebugAuth specifies an optional function that's invoked on every request
	// to debug handlers at /debug/ to allow or deny access to them. If not
	// provided, all access is allowed.
	DebugAuth func(r *http.Request) bool
	// Middleware is a chain of middleware applied to every request, outermost
	// first.
	Middleware []Middleware
	// Ready is an optional function that is called when the server is ready to
	// serve requests. Used in tests.
	Ready func()
}

var (
	errNoAddr = errors.New("web: server has no address to listen on")
	errNilMux = errors.New("web: server has nil mux")
)

// ListenAndServe starts the HTTP server and blocks until ctx is canceled,
// then gracefully shuts the server down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	if s.Addr == "" {
		return errNoAddr
	}
	if s.Mux == nil {
		return errNilMux
	}

	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	defer l.Close()
	env.Logf("Listening on %s...", l.Addr())

	Health(s.Mux)
	if s.Debuggable {
		Debugger(s.Mux)
	}

	var handler http.Handler = s.Mux
	handler = s.protectDebug(handler)
	for i := len(s.Middleware) - 1; i >= 0; i-- {
		handler = s.Middleware[i](handler)
	}

	hs := &http.Server{
		Handler:  handler,
		ErrorLog: log.New(logger.Logf(env.Logf), "", 0),
		BaseContext: func(net.Listener) context.Context {
			// Propagate the application environment to request handlers.
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		if err := hs.Serve(l); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if s.Ready != nil {
		s.Ready()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		env.Logf("Gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return hs.Shutdown(shutdownCtx)
	}
}

func (s *Server) protectDebug(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/debug/") || s.DebugAuth == nil {
			next.ServeHTTP(w, r)
			return
		}
		// If access denied, pretend that debug endpoints don't exist.
		if !s.DebugAuth(r) {
			RespondError(w, r, ErrNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
