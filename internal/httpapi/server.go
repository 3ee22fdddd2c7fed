package httpapi

import (
	"net/http"
	"time"
)

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           requestLogger(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
