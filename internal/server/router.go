package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter mounts the local API routes.
func NewRouter(h *Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	router.Use(metricsMiddleware)

	router.Handle("/metrics", promhttp.Handler())

	router.Get("/api/v1/rates/tables/{brand}", h.GetTable)
	router.Get("/api/v1/rates/match", h.MatchAmount)

	router.Post("/api/v1/quotes", h.CreateQuote)
	router.Post("/api/v1/quotes/{id}/payout", h.RedeemQuote)

	router.Post("/api/v1/giftcards/rank", h.RankCards)

	router.Get("/api/v1/ledger", h.ListLedger)
	router.Post("/api/v1/ledger", h.AppendLedger)
	router.Delete("/api/v1/ledger", h.ClearLedger)

	router.Get("/api/v1/alerts", h.ListAlerts)
	router.Post("/api/v1/alerts", h.CreateAlert)
	router.Post("/api/v1/alerts/{id}/toggle", h.ToggleAlert)
	router.Delete("/api/v1/alerts/{id}", h.DeleteAlert)

	router.Get("/api/v1/withdrawals/estimate", h.EstimateWithdrawal)

	router.Post("/api/v1/session/logout", h.Logout)

	router.Get("/api/v1/prefs/notifications", h.GetNotifications)
	router.Put("/api/v1/prefs/notifications", h.SetNotifications)
	router.Get("/api/v1/prefs/calendar", h.ListCalendar)
	router.Post("/api/v1/prefs/calendar", h.AddCalendarEvent)
	router.Get("/api/v1/prefs/profile-setup", h.GetProfileSetup)
	router.Post("/api/v1/prefs/profile-setup/dismiss", h.DismissProfileSetup)

	return router
}

// Start runs the HTTP server and shuts it down gracefully on ctx
// cancellation.
func Start(ctx context.Context, addr string, shutdownTimeout time.Duration, router *chi.Mux, logger zerolog.Logger) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	listener, listenErr := net.Listen("tcp", addr)
	if listenErr != nil {
		return listenErr
	}
	logger.Info().Str("addr", listener.Addr().String()).Msg("HTTP server listening")

	server := &http.Server{Handler: router}
	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case serveErr := <-errCh:
		return serveErr
	}
}
