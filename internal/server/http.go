// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package server holds the supervised long-running services: the HTTP
// listener and the periodic maintenance sweep. Both implement
// suture.Service and restart under the supervision tree on failure.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sportlinehq/sportline/internal/logging"
)

// HTTPService runs the API listener under supervision.
type HTTPService struct {
	addr            string
	handler         http.Handler
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// NewHTTPService builds the listener service.
func NewHTTPService(addr string, handler http.Handler, readTimeout, writeTimeout, shutdownTimeout time.Duration) *HTTPService {
	return &HTTPService{
		addr:            addr,
		handler:         handler,
		readTimeout:     readTimeout,
		writeTimeout:    writeTimeout,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve runs the listener until ctx is canceled, then drains connections
// within the shutdown timeout.
func (s *HTTPService) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("HTTP server shutdown incomplete; closing")
		//nolint:errcheck // already shutting down
		srv.Close()
	}
	logging.Info().Msg("HTTP server stopped")
	return ctx.Err()
}

func (s *HTTPService) String() string {
	return "http-server(" + s.addr + ")"
}
