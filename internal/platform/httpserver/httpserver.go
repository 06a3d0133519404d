package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"poolpay/internal/platform/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	// writeSlack leaves room to write a timeout response after the
	// per-request deadline fires.
	writeSlack = 5 * time.Second
)

// New builds the HTTP server. The write timeout tracks the configured request
// timeout so slow gateway calls are cut by the middleware, not the connection.
func New(cfg config.Server, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + writeSlack,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}
