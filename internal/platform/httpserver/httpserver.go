package httpserver

import (
	"net/http"
	"time"

	"payout/internal/platform/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	writeGrace        = 5 * time.Second
	defaultWrite      = 35 * time.Second
	maxHeaderBytes    = 1 << 16
)

// New builds the ledger's HTTP server. The write timeout trails the
// per-request timeout so handlers can still write their 503 before the
// connection is cut.
func New(cfg config.Server, handler http.Handler) *http.Server {
	write := defaultWrite
	if cfg.RequestTimeout > 0 {
		write = cfg.RequestTimeout + writeGrace
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       write,
		WriteTimeout:      write,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}
}
