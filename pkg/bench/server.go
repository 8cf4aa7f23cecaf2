package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
)

// Server is the optional live dashboard the benchmark CLI can start to serve completed
// Reports over HTTP, push new ones over a websocket, and answer ad-hoc GraphQL queries
// (SPEC_FULL.md §4.6). It is modeled directly on the teacher's pkg/server.Server — a chi
// router built in a constructor, routes registered in setupRoutes, an *http.Server wrapping
// it — scaled down from a full document-database API to a read-only results board.
type Server struct {
	mu      sync.RWMutex
	reports map[string]*Report
	order   []string

	router   *chi.Mux
	httpSrv  *http.Server
	upgrader websocket.Upgrader
	subs     map[*websocket.Conn]struct{}
	subsMu   sync.Mutex
	schema   graphql.Schema
}

// NewServer builds a Server bound to addr (e.g. ":8090"), with routes and the GraphQL schema
// already wired.
func NewServer(addr string) (*Server, error) {
	s := &Server{
		reports: make(map[string]*Report),
		router:  chi.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: make(map[*websocket.Conn]struct{}),
	}

	schema, err := s.buildSchema()
	if err != nil {
		return nil, fmt.Errorf("bench: building GraphQL schema: %w", err)
	}
	s.schema = schema

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Get("/results", s.jsonHandler(s.handleListResults))
	s.router.Get("/results/{run}", s.jsonHandler(s.handleGetResult))
	s.router.Get("/stream", s.handleStream)
	s.router.Post("/graphql", s.handleGraphQL)
}

func (s *Server) jsonHandler(fn func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		data, err := fn(r)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(data)
	}
}

func (s *Server) handleListResults(r *http.Request) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Report, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.reports[name])
	}
	return out, nil
}

func (s *Server) handleGetResult(r *http.Request) (any, error) {
	run := chi.URLParam(r, "run")
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reports[run]
	if !ok {
		return nil, fmt.Errorf("no report named %q", run)
	}
	return rep, nil
}

// handleStream upgrades to a websocket and pushes every future RecordReport call to the
// client as JSON, modeled on the teacher's handlers.SetupWebSocketRoutes change-stream
// pattern (pkg/server/handlers/websocket.go) narrowed to a single fan-out topic.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.subsMu.Lock()
	s.subs[conn] = struct{}{}
	s.subsMu.Unlock()

	defer func() {
		s.subsMu.Lock()
		delete(s.subs, conn)
		s.subsMu.Unlock()
		conn.Close()
	}()

	// Drain and discard any client messages; this stream is push-only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// RecordReport stores a completed Report and broadcasts it to every connected websocket
// subscriber.
func (s *Server) RecordReport(rep *Report) {
	s.mu.Lock()
	if _, exists := s.reports[rep.WorkloadName]; !exists {
		s.order = append(s.order, rep.WorkloadName)
	}
	s.reports[rep.WorkloadName] = rep
	s.mu.Unlock()

	payload, err := json.Marshal(rep)
	if err != nil {
		return
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for conn := range s.subs {
		conn.WriteMessage(websocket.TextMessage, payload)
	}
}

// ListenAndServe blocks serving HTTP until the server errors or is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// buildSchema defines the read-only GraphQL surface over recorded Reports, following the
// teacher's Schema() constructor shape (pkg/graphql/schema.go: graphql.NewObject per type,
// a Query root with list + by-name fields) scaled to this package's one resource type.
func (s *Server) buildSchema() (graphql.Schema, error) {
	histogramType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OperationHistogram",
		Fields: graphql.Fields{
			"count":  &graphql.Field{Type: graphql.Int},
			"meanNs": &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (any, error) {
				h, _ := p.Source.(*Histogram)
				if h == nil {
					return 0, nil
				}
				return h.Mean().Nanoseconds(), nil
			}},
			"p99Ns": &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (any, error) {
				h, _ := p.Source.(*Histogram)
				if h == nil {
					return 0, nil
				}
				return h.Percentile(99).Nanoseconds(), nil
			}},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Report",
		Fields: graphql.Fields{
			"workloadName": &graphql.Field{Type: graphql.String},
			"treeKind":     &graphql.Field{Type: graphql.String},
			"completed":    &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (any, error) {
				rep, _ := p.Source.(*Report)
				if rep == nil {
					return 0, nil
				}
				return int(rep.Completed), nil
			}},
			"durationNs": &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (any, error) {
				rep, _ := p.Source.(*Report)
				if rep == nil {
					return 0, nil
				}
				return rep.Duration.Nanoseconds(), nil
			}},
			"finalCount": &graphql.Field{Type: graphql.Int},
			"finalDepth": &graphql.Field{Type: graphql.Int},
			"puts": &graphql.Field{Type: histogramType, Resolve: func(p graphql.ResolveParams) (any, error) {
				rep, _ := p.Source.(*Report)
				if rep == nil {
					return nil, nil
				}
				return rep.ByOperation["put"], nil
			}},
			"gets": &graphql.Field{Type: histogramType, Resolve: func(p graphql.ResolveParams) (any, error) {
				rep, _ := p.Source.(*Report)
				if rep == nil {
					return nil, nil
				}
				return rep.ByOperation["get"], nil
			}},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"reports": &graphql.Field{
				Type: graphql.NewList(reportType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					s.mu.RLock()
					defer s.mu.RUnlock()
					out := make([]*Report, 0, len(s.order))
					for _, name := range s.order {
						out = append(out, s.reports[name])
					}
					return out, nil
				},
			},
			"report": &graphql.Field{
				Type: reportType,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					name, _ := p.Args["name"].(string)
					s.mu.RLock()
					defer s.mu.RUnlock()
					return s.reports[name], nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}
