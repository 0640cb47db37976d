// Luna Social - Venue Recommendation and Social Compatibility Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunasocial

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the recommendation API under supervision. When ctx
// is canceled the server drains within shutdownTimeout. A listener failure
// is returned so Suture restarts the service.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// NewHTTPServerService wraps server. A non-positive timeout means 10s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", "http").Logger(),
	}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	drained := make(chan error, 1)
	stop := context.AfterFunc(ctx, func() {
		// ctx is already done; the drain needs its own deadline.
		sctx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		h.logger.Info().Dur("timeout", h.shutdownTimeout).Msg("draining http connections")
		drained <- h.server.Shutdown(sctx)
	})

	err := h.server.ListenAndServe()
	shutdownPending := !stop()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		if shutdownPending {
			<-drained
		}
		return fmt.Errorf("http server failed: %w", err)
	}
	if !shutdownPending {
		// Closed by someone else.
		return nil
	}
	if serr := <-drained; serr != nil {
		return fmt.Errorf("http server shutdown failed: %w", serr)
	}
	return ctx.Err()
}

func (h *HTTPServerService) String() string {
	return "http-server"
}
