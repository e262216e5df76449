// A simple HTTP server with orderly shutdown, for the daemon.

package httpsrv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	. "pairdist/common"
)

const (
	serverShutdownTimeoutSec = 10
)

type Server struct {
	verbose bool
	port    int
	failed  func(error)
	stop    chan bool
	server  *http.Server
}

// Create a server that will be listening on `port` and dispatching to `handler`.  It will call
// `failed` if the server returns a failure code.  The server is not started by this.

func New(verbose bool, port int, handler http.Handler, failed func(error)) *Server {
	return &Server{
		verbose: verbose,
		port:    port,
		failed:  failed,
		stop:    make(chan bool, 1),
		server:  &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler},
	}
}

// Start the server.  This blocks the current goroutine until the server exits, so typical usage
// would be `go s.Start()`.  To force the server to shut down, call s.Stop().

func (s *Server) Start() {
	if s.verbose {
		Log.Infof("Listening on port %d", s.port)
	}
	s.serve(s.server.ListenAndServe())
}

// Like Start, but on a listener the caller has already set up.

func (s *Server) StartOn(l net.Listener) {
	if s.verbose {
		Log.Infof("Listening on %s", l.Addr())
	}
	s.serve(s.server.Serve(l))
}

func (s *Server) serve(err error) {
	if err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			Log.Error(err.Error())
			Log.Error("SERVER NOT RUNNING")
			if s.failed != nil {
				s.failed(err)
			}
		} else {
			Log.Info(err.Error())
		}
	}
	s.stop <- true
}

// Cause the server to shut down and wait for it to stop.

func (s *Server) Stop() {
	cx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeoutSec*time.Second)
	defer cancel()
	if err := s.server.Shutdown(cx); err != nil {
		Log.Warning(err.Error())
	}
	<-s.stop
}
