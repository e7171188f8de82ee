package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mapstory/internal/engine"
	"github.com/san-kum/mapstory/internal/experiment"
	"github.com/san-kum/mapstory/internal/trace"
)

var ErrStopped = errors.New("server: engine loop stopped")

const shutdownTimeout = 5 * time.Second

type Options struct {
	Addr   string
	Frame  time.Duration
	Logger *log.Logger
}

// Server exposes one engine over HTTP and websockets. The engine belongs to
// a single loop goroutine; handlers reach it by submitting closures.
type Server struct {
	exp    *experiment.Experiment
	eng    *engine.Engine
	frame  time.Duration
	log    *log.Logger
	router *mux.Router
	http   *http.Server

	cmds    chan func()
	stopped chan struct{}

	mu      sync.Mutex
	clients map[string]*client
}

// New wraps an experiment that has been Setup but not begun.
func New(exp *experiment.Experiment, opts Options) *Server {
	if opts.Frame <= 0 {
		opts.Frame = time.Second / 30
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		exp:     exp,
		eng:     exp.Engine(),
		frame:   opts.Frame,
		log:     logger,
		cmds:    make(chan func()),
		stopped: make(chan struct{}),
		clients: make(map[string]*client),
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	exp.Recorder().Subscribe(s.publish)
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/steps", s.handleSteps).Methods(http.MethodGet)
	api.HandleFunc("/layers", s.handleLayers).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/actions", s.handleAction).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWebSocket)
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled or a component fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.loop(ctx) })
	g.Go(func() error {
		s.log.Printf("server: listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeClients()
		return s.http.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loop owns the engine: it begins playback, ticks every frame and runs the
// closures handlers submit.
func (s *Server) loop(ctx context.Context) error {
	defer close(s.stopped)
	if err := s.exp.Begin(); err != nil {
		return err
	}
	defer s.eng.Close()

	ticker := time.NewTicker(s.frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Printf("server: engine loop stopped at %v", s.eng.Now())
			return ctx.Err()
		case fn := <-s.cmds:
			fn()
		case <-ticker.C:
			s.eng.Tick(s.frame)
		}
	}
}

// do runs fn on the loop goroutine and waits for it.
func (s *Server) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); close(done) }:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publish runs on the loop goroutine for every recorded event.
func (s *Server) publish(e trace.Event) {
	s.broadcast(message{Type: msgEvent, Event: &e, State: s.snapshot()})
}
