// Package api exposes the view controller over HTTP. Every handler hands its
// work to the event loop, so the controller is never touched from a request
// goroutine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"metro-twin/internal/sched"
	"metro-twin/internal/sim"
	"metro-twin/internal/surface"
	"metro-twin/internal/view"
)

// Loop is the scheduler the handlers run on.
type Loop interface {
	sched.Scheduler
	sched.Executor
}

type Server struct {
	loop    Loop
	ctrl    *view.Controller
	surf    *surface.Memory
	runner  *sim.Runner
	origins []string
}

func NewServer(loop Loop, ctrl *view.Controller, surf *surface.Memory, runner *sim.Runner, origins []string) *Server {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{loop: loop, ctrl: ctrl, surf: surf, runner: runner, origins: origins}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	}))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.getState)
		r.Get("/operations", s.getOperations)
		r.Post("/views/{view}", s.switchView)

		r.Post("/fleet/filter", s.filterFleet)
		r.Post("/fleet/refresh", s.refreshFleet)
		r.Post("/stations/{id}/select", s.selectStation)
		r.Post("/trains/{id}/select", s.selectTrain)
		r.Post("/modal/close", s.closeModal)

		r.Post("/map/zoom", s.zoom)
		r.Post("/map/reset", s.resetZoom)

		r.Post("/simulation/scenario", s.selectScenario)
		r.Post("/simulation/run", s.runSimulation)
		r.Post("/simulation/reset", s.resetSimulation)

		r.Get("/gtfs-rt/vehicle-positions", s.vehiclePositions)
	})
	return r
}

// Serve starts the HTTP server on addr.
func (s *Server) Serve(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: s.Routes(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()
	log.Printf("api listening on %s", addr)
	return srv
}

type ctxKey struct{}

// requestID tags every request with an X-Request-ID, reusing the caller's.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the id requestID attached to ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, RequestID: RequestID(r.Context())})
}

// do runs fn on the loop, answering 503 when the loop has stopped. A client
// that went away before fn ran gets no answer and fn is dropped.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	err := s.loop.Do(r.Context(), fn)
	switch {
	case err == nil:
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Printf("request %s: dropped, client gone: %v", RequestID(r.Context()), err)
	default:
		log.Printf("request %s: %v", RequestID(r.Context()), err)
		writeError(w, r, http.StatusServiceUnavailable, "event loop unavailable")
	}
	return false
}
