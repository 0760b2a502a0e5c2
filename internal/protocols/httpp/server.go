// Package httpp contains HTTP utilities.
package httpp

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/promptcam/promptcam/internal/logger"
)

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

// Server is a wrapper around http.Server that provides:
// - net.Listener allocation and closure
// - exit on panic
// - logging
// - server header
// - filtering of invalid requests
type Server struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Handler      http.Handler
	Parent       logger.Writer

	ln    net.Listener
	inner *http.Server
}

// Initialize initializes a Server.
func (s *Server) Initialize() error {
	if s.ReadTimeout == 0 {
		return fmt.Errorf("invalid ReadTimeout")
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 10 * time.Second
	}

	var err error
	s.ln, err = net.Listen("tcp", s.Address)
	if err != nil {
		return err
	}

	h := s.Handler
	h = &handlerFilterRequests{h}
	h = &handlerServerHeader{h}
	h = &handlerLogger{h, s.Parent}
	h = &handlerExitOnPanic{h}
	h = &handlerWriteTimeout{h, s.WriteTimeout}

	s.inner = &http.Server{
		Handler: h,

		// applied before reading any request
		ReadTimeout: s.ReadTimeout,

		// applied after the HTTP handler has returned
		IdleTimeout: 30 * time.Second,

		ErrorLog: log.New(&nilWriter{}, "", 0),
	}

	go s.inner.Serve(s.ln)

	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Close closes all resources and waits for all routines to return.
func (s *Server) Close() {
	ctx, ctxCancel := context.WithCancel(context.Background())
	ctxCancel()
	s.inner.Shutdown(ctx) //nolint:errcheck
	s.ln.Close()          // in case Shutdown() is called before Serve()
}
