// Package httpserver builds the engine's HTTP listener.
package httpserver

import (
	"net/http"
	"time"
)

// Every request body on this API is a small JSON document (a visit
// request, a grant, a restriction); nothing streams, so slow clients
// get cut off instead of holding a connection open.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// New wraps the assembled router in an http.Server bound to addr.
// Shutdown is driven by the caller.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
