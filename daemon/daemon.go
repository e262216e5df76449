// `pairdist daemon` - HTTP server that runs the pair analysis on posted input.
//
// Endpoints:
//
//   POST /report?similarity=true|false&source=name
//     The request body is the raw input text, in the same format as the input file.  The
//     response is the JSON-encoded result.  Parse problems are reported in the result's
//     diagnostics, they are never an error.
//
//   GET /history?n=N
//     The N most recent stored results, if the daemon has a history store (-history-dir);
//     404 otherwise.
//
//   GET /version
//
// The OpenAPI description is served at /openapi.json and documentation at /docs.
//
// Identical inputs are recognized byte for byte and their analysis is served from a cache, but every
// request still yields a new result with its own run id, and every result is stored to the sinks.
//
// Authentication:
//
//  With -auth-file, every request must carry HTTP basic authentication matching one of the
//  username:password lines in the file.  Sending SIGHUP makes the daemon reread the file.
//
// Termination:
//
//  Sending SIGTERM (or interrupting) will shut the daemon down in an orderly manner.
//
// Logging:
//
//  The daemon logs to stderr and to the syslog with the tag defined below ("logTag"), unless
//  -no-syslog is given.

package daemon

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/syslog"
	"net/http"
	"os"
	"strconv"
	"syscall"

	"pairdist/auth"
	. "pairdist/command"
	. "pairdist/common"
	"pairdist/db"
	"pairdist/httpsrv"
	"pairdist/process"
)

const (
	defaultListenPort = 8088
	defaultCacheSize  = 128
	logTag            = "pairdist"
	authRealm         = "pairdist"
)

type DaemonCommand struct {
	VerboseArgs
	SinkArgs
	port      uint
	cacheSize int
	noSyslog  bool
	authFile  string

	authenticator *auth.Authenticator
	version       string
}

func New(version string) *DaemonCommand {
	return &DaemonCommand{version: version}
}

func (dc *DaemonCommand) Add(fs *flag.FlagSet) {
	dc.VerboseArgs.Add(fs)
	dc.SinkArgs.Add(fs)
	fs.UintVar(&dc.port, "port", 0,
		fmt.Sprintf("Listen for connections on `port` [default: %d]", defaultListenPort))
	fs.IntVar(&dc.cacheSize, "cache", defaultCacheSize, "Cache the analysis of this many distinct `inputs`")
	fs.BoolVar(&dc.noSyslog, "no-syslog", false, "Do not log to the syslog")
	fs.StringVar(&dc.authFile, "auth-file", "", "Require basic authentication against user:password `filename`")
}

func (dc *DaemonCommand) Summary() []string {
	return []string{
		"Run pairdist as an HTTP server that analyzes posted input.  See the",
		"package documentation for the endpoints.",
	}
}

func (dc *DaemonCommand) Validate() error {
	var e1, e2, e3, e4, e5 error
	e1 = dc.VerboseArgs.Validate()
	e2 = dc.SinkArgs.Validate()
	if dc.port == 0 {
		var s string
		if ApplyDefault(&s, DaemonPort) {
			p, err := strconv.ParseUint(s, 10, 16)
			if err != nil {
				e3 = fmt.Errorf("Bad [daemon] port in config file: %w", err)
			}
			dc.port = uint(p)
		} else {
			dc.port = defaultListenPort
		}
	}
	if dc.port > 65535 {
		e3 = errors.New("Bad -port value")
	}
	if dc.cacheSize <= 0 {
		e4 = errors.New("-cache must be positive")
	}
	if dc.authFile != "" {
		dc.authenticator, e5 = auth.ReadPasswords(dc.authFile)
		if e5 != nil {
			e5 = fmt.Errorf("Failed to read authentication file %w", e5)
		}
	}
	return errors.Join(e1, e2, e3, e4, e5)
}

// Run until a termination signal arrives or the server fails.

func (dc *DaemonCommand) RunDaemon() error {
	if !dc.noSyslog {
		logger, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, logTag)
		if err != nil {
			Log.Warningf("Could not open syslog: %v", err)
		} else {
			Log.SetUnderlying(logger)
		}
	}

	svc, err := dc.openService(context.Background())
	if err != nil {
		return err
	}
	defer svc.close()

	mux := http.NewServeMux()
	newAPI(mux, svc, dc.version)
	var handler http.Handler = mux
	if dc.authenticator != nil {
		handler = httpsrv.RequireAuth(mux, dc.authenticator, authRealm, dc.Verbose)
	}

	failed := make(chan error, 1)
	server := httpsrv.New(dc.Verbose, int(dc.port), handler, func(err error) {
		failed <- err
	})
	go server.Start()

	signals, stopSignals := process.NotifySignals(syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	defer stopSignals()

	for {
		select {
		case err := <-failed:
			return fmt.Errorf("Server failed\n%w", err)
		case s := <-signals:
			if s == syscall.SIGHUP {
				dc.reload()
				continue
			}
			Log.Infof("Received %v, shutting down", s)
			server.Stop()
			return nil
		}
	}
}

func (dc *DaemonCommand) reload() {
	if dc.authenticator == nil {
		Log.Info("SIGHUP: nothing to reload")
		return
	}
	if err := dc.authenticator.Reread(); err != nil {
		Log.Errorf("SIGHUP: keeping old passwords: %v", err)
		return
	}
	Log.Info("SIGHUP: passwords reloaded")
}

func (dc *DaemonCommand) openService(cx context.Context) (*service, error) {
	var history *db.History
	if dc.HistoryDir != "" {
		var err error
		history, err = db.OpenHistory(dc.HistoryDir)
		if err != nil {
			return nil, fmt.Errorf("Failed to open history store\n%w", err)
		}
	}
	sinks, err := db.OpenSinks(cx, "", dc.DatabaseURI, dc.KafkaBroker, dc.KafkaTopic)
	if err != nil {
		if history != nil {
			history.Close()
		}
		return nil, err
	}
	if history != nil {
		sinks = append(sinks, history)
	}
	return newService(dc.cacheSize, history, sinks)
}
