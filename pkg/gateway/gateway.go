// Package gateway exposes a dispatcher over HTTP and WebSocket: a small
// admin API for inspecting and toggling routes, a dispatch endpoint for
// one-shot invocations, and a socket endpoint that dispatches each text
// frame it receives.
package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/textmux/pkg/command"
	"github.com/vango-dev/textmux/pkg/dispatch"
	"github.com/vango-dev/textmux/pkg/message"
	"github.com/vango-dev/textmux/pkg/router"
)

// Gateway serves a dispatcher over HTTP.
type Gateway struct {
	dispatcher    *dispatch.Dispatcher
	store         *router.Store
	defs          map[string][]command.Command
	defaultRouter string
	logger        *slog.Logger
	upgrader      websocket.Upgrader
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithDefaultRouter sets the router used when a request names none.
func WithDefaultRouter(id string) Option {
	return func(g *Gateway) { g.defaultRouter = id }
}

// WithDefinitions registers the full command set per router so the
// route toggle endpoints can re-enable a disabled route.
func WithDefinitions(defs map[string][]command.Command) Option {
	return func(g *Gateway) { g.defs = defs }
}

// WithCheckOrigin sets the WebSocket origin check. The default accepts
// every origin, which suits a gateway behind its own access controls.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(g *Gateway) { g.upgrader.CheckOrigin = fn }
}

// New creates a Gateway around the dispatcher.
func New(d *dispatch.Dispatcher, opts ...Option) *Gateway {
	g := &Gateway{
		dispatcher: d,
		store:      d.Store(),
		logger:     slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handler returns the HTTP handler for mounting in a server.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", g.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/routers", func(r chi.Router) {
		r.Get("/", g.handleListRouters)
		r.Route("/{router}", func(r chi.Router) {
			r.Get("/routes", g.handleListRoutes)
			r.Post("/routes", g.handleEnableRoute)
			r.Delete("/routes", g.handleDisableRoute)
		})
	})

	r.Post("/dispatch", g.handleDispatch)
	r.Get("/ws", g.handleSocket)

	return r
}

type dispatchRequest struct {
	Router string `json:"router,omitempty"`
	Text   string `json:"text"`
}

type dispatchResponse struct {
	Outcome string `json:"outcome"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

type routeRequest struct {
	Path string `json:"path"`
}

type routeInfo struct {
	Path string `json:"path"`
	Doc  string `json:"doc,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (g *Gateway) handleHealthz(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleListRouters(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string][]string{"routers": g.store.Routers()})
}

func (g *Gateway) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "router")
	routes, err := g.store.Routes(id)
	if err != nil {
		g.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	docs, _ := g.store.Docs(id)

	infos := make([]routeInfo, 0, len(routes))
	for _, path := range routes {
		infos = append(infos, routeInfo{Path: path, Doc: docs[path]})
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"router": id, "routes": infos})
}

func (g *Gateway) handleEnableRoute(w http.ResponseWriter, r *http.Request) {
	g.toggleRoute(w, r, g.store.LoadRoute)
}

func (g *Gateway) handleDisableRoute(w http.ResponseWriter, r *http.Request) {
	g.toggleRoute(w, r, g.store.UnloadRoute)
}

func (g *Gateway) toggleRoute(w http.ResponseWriter, r *http.Request, apply func(id, path string, defs []command.Command) error) {
	id := chi.URLParam(r, "router")

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Path == "" {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path is required"})
		return
	}

	defs, ok := g.defs[id]
	if !ok {
		g.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no definitions registered for router " + id})
		return
	}

	if err := apply(id, req.Path, defs); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, router.ErrRouterNotFound) || errors.Is(err, router.ErrRouteNotDefined) {
			status = http.StatusNotFound
		}
		g.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]string{"router": id, "path": req.Path})
}

func (g *Gateway) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	id := req.Router
	if id == "" {
		id = g.defaultRouter
	}

	result, err := g.dispatcher.InvokeContext(r.Context(), message.Text(req.Text), id)
	status, resp := dispatchResult(result, err)
	g.writeJSON(w, status, resp)
}

// dispatchResult translates an invocation outcome into a wire response.
// Halts are expected pipeline outcomes and report 200 with the halt
// reason; only contract violations and handler errors surface as 5xx.
func dispatchResult(result any, err error) (int, dispatchResponse) {
	outcome := dispatch.Outcome(err)
	resp := dispatchResponse{Outcome: outcome}

	switch outcome {
	case "ok":
		resp.Result = result
		return http.StatusOK, resp
	case "halted":
		var halted *dispatch.HaltedError
		errors.As(err, &halted)
		resp.Error = haltReason(halted)
		return http.StatusOK, resp
	case "no_match":
		resp.Error = err.Error()
		return http.StatusNotFound, resp
	case "wrong_prefix":
		resp.Error = err.Error()
		return http.StatusBadRequest, resp
	default:
		resp.Error = err.Error()
		return http.StatusInternalServerError, resp
	}
}

// haltReason prefers the "error" assign set by the halting interceptor.
func haltReason(halted *dispatch.HaltedError) string {
	if v, ok := halted.Message.Get("error"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return halted.Error()
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("response encode error", "error", err)
	}
}
