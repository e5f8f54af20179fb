// Package httpserver builds the votegate HTTP server. Timeouts here bound
// the transport; per-request deadlines come from the router's timeout
// middleware, so the write timeout must outlast it.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	// Slightly above the router's 30s request timeout, so slow handlers are
	// cut off by the middleware (with a JSON error) rather than a dropped
	// connection.
	writeTimeout = 35 * time.Second
	idleTimeout  = 60 * time.Second
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
