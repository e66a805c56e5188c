// Package metrics implements a standalone HTTP server for serving pprof
// profiles and Prometheus metrics while a benchmark runs.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parallelbench/ep/pkg/log"
	"github.com/parallelbench/ep/pkg/stop"
)

// Server represents a standalone HTTP server for serving a Prometheus metrics
// endpoint.
type Server struct {
	srv *http.Server
}

// Stop shuts down the server.
func (s *Server) Stop() stop.Result {
	c := make(stop.Channel)
	go func() {
		c.Done(s.srv.Shutdown(context.Background()))
	}()

	return c.Result()
}

func newRouter() *httprouter.Router {
	r := httprouter.New()
	r.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	r.GET("/debug/pprof/*item", servePprof)
	return r
}

// servePprof dispatches the pprof endpoints. pprof.Index serves the index
// page and every named profile, so only the special handlers need routing.
func servePprof(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch ps.ByName("item") {
	case "/cmdline":
		pprof.Cmdline(w, r)
	case "/profile":
		pprof.Profile(w, r)
	case "/symbol":
		pprof.Symbol(w, r)
	case "/trace":
		pprof.Trace(w, r)
	default:
		pprof.Index(w, r)
	}
}

// NewServer creates a new instance of a metrics server that asynchronously
// serves requests.
func NewServer(addr string) *Server {
	s := &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           newRouter(),
			ReadHeaderTimeout: time.Second * 60,
		},
	}

	go func() {
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed while serving prometheus", log.Err(err))
		}
	}()

	return s
}
