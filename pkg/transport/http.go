package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/retailbridge/retailbridge/pkg/mcp"
)

const maxRequestSize = 4 * 1024 * 1024

// HTTP is the HTTP transport: a generic JSON-RPC intake plus convenience
// routes that wrap a posted body into the matching envelope.
type HTTP struct {
	dispatcher   Dispatcher
	capabilities mcp.InitializeResult
}

// NewHTTP creates an HTTP transport over the given dispatcher. The
// capabilities descriptor is served verbatim on GET /api/mcp/capabilities.
func NewHTTP(d Dispatcher, capabilities mcp.InitializeResult) *HTTP {
	return &HTTP{dispatcher: d, capabilities: capabilities}
}

// Router builds the chi router for the /api/mcp surface.
func (h *HTTP) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recovery)

	r.Route("/api/mcp", func(r chi.Router) {
		r.Post("/", h.handleEnvelope)
		r.Get("/capabilities", h.handleCapabilities)
		r.Get("/health", h.handleHealth)
		r.Post("/initialize", h.wrap("initialize"))
		r.Post("/tools/list", h.wrap("tools/list"))
		r.Post("/tools/call", h.wrap("tools/call"))
		r.Post("/resources/list", h.wrap("resources/list"))
	})
	return r
}

// ListenAndServe starts the HTTP server with graceful shutdown support.
func (h *HTTP) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// handleEnvelope is the generic JSON-RPC intake. Notifications get 204.
func (h *HTTP) handleEnvelope(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeEnvelopeError(w, nil, mcp.CodeInvalidRequest, "Unreadable request body")
		return
	}

	resp := h.dispatcher.Handle(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(resp)
}

// wrap builds a handler that treats the posted body as the params of the
// given method and dispatches a synthesized envelope.
func (h *HTTP) wrap(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeEnvelopeError(w, nil, mcp.CodeInvalidRequest, "Unreadable request body")
			return
		}
		if len(body) > 0 && !json.Valid(body) {
			writeEnvelopeError(w, nil, mcp.CodeParseError, "Parse error")
			return
		}

		id, _ := json.Marshal(fmt.Sprintf("http-%s", RequestIDFromContext(r.Context())))
		req := mcp.Request{
			JSONRPC: "2.0",
			ID:      id,
			Method:  method,
		}
		if len(body) > 0 {
			req.Params = body
		}
		raw, _ := json.Marshal(req)

		resp := h.dispatcher.Handle(r.Context(), raw)
		w.Header().Set("Content-Type", "application/json")
		w.Write(resp)
	}
}

func (h *HTTP) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.capabilities); err != nil {
		log.Printf("http: encode capabilities: %v", err)
	}
}

func (h *HTTP) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeEnvelopeError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	resp := mcp.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &mcp.RPCError{Code: code, Message: message},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(resp)
}
