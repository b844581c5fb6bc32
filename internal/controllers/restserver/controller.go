// Package restserver serves stored analysis runs and the constituent catalog
// over HTTP.
package restserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/chrissnell/tidegauge/internal/log"
	"github.com/chrissnell/tidegauge/internal/store"
	"github.com/chrissnell/tidegauge/pkg/tidal"
)

// DefaultListenAddr is used when no address is configured
const DefaultListenAddr = "0.0.0.0:8080"

// Controller represents the REST server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	Server   http.Server
	Store    store.Store
	Catalog  *tidal.Catalog
	Metrics  http.Handler
	handlers *Handlers
	errs     chan error
}

// NewController creates a new REST server controller. metrics may be nil, in
// which case /metrics is not routed.
func NewController(ctx context.Context, wg *sync.WaitGroup, st store.Store, listenAddr string, metrics http.Handler) (*Controller, error) {
	if st == nil {
		return nil, errors.New("REST server needs a run store")
	}

	if listenAddr == "" {
		log.Infof("listen address not provided; defaulting to %s", DefaultListenAddr)
		listenAddr = DefaultListenAddr
	}

	ctrl := &Controller{
		ctx:     ctx,
		wg:      wg,
		Store:   st,
		Catalog: tidal.Default(),
		Metrics: metrics,
		errs:    make(chan error, 1),
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = listenAddr
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController binds the listen address and starts the REST server. A bind
// failure is returned; a later serve failure is delivered on Err. The server
// shuts down when the controller's context is cancelled.
func (c *Controller) StartController() error {
	ln, err := net.Listen("tcp", c.Server.Addr)
	if err != nil {
		return fmt.Errorf("REST server cannot listen on %s: %w", c.Server.Addr, err)
	}

	log.Infof("starting REST server on %s", ln.Addr())
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.Serve(ln); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
			c.errs <- err
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Err delivers the error that stopped the server, if it stopped on its own
func (c *Controller) Err() <-chan error {
	return c.errs
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware)

	router.HandleFunc("/healthz", c.handlers.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/runs", c.handlers.ListRuns).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)
	router.HandleFunc("/constituents", c.handlers.ListConstituents).Methods(http.MethodGet)

	if c.Metrics != nil {
		router.Handle("/metrics", c.Metrics).Methods(http.MethodGet)
	}

	return router
}
