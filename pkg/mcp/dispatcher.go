package mcp

import (
	"context"
	"encoding/json"
	"log"
)

// Invoker executes a named tool against the backend. A non-nil error means
// the call faulted (backend 5xx or transport failure) and is reported to the
// caller as a JSON-RPC internal error; domain failures are carried inside
// the ToolCallResult with IsError set.
type Invoker interface {
	Call(ctx context.Context, name string, args json.RawMessage) (ToolCallResult, error)
}

// Dispatcher routes JSON-RPC envelopes to the tool catalog and invoker.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	invoker Invoker
	tools   []ToolDefinition
	init    InitializeResult
}

// NewDispatcher creates a Dispatcher serving the given catalog and identity.
func NewDispatcher(inv Invoker, tools []ToolDefinition, protocolVersion, name, version string) *Dispatcher {
	return &Dispatcher{
		invoker: inv,
		tools:   tools,
		init: InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: name, Version: version},
			Capabilities: Capabilities{
				Tools:     map[string]any{},
				Resources: map[string]any{},
			},
		},
	}
}

// Capabilities returns the static initialize result the dispatcher serves.
func (d *Dispatcher) Capabilities() InitializeResult {
	return d.init
}

// Handle processes one raw JSON-RPC message and returns the encoded
// response, or nil when the message is a notification. It never panics and
// never returns malformed output.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) []byte {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return encode(Response{
			JSONRPC: "2.0",
			ID:      json.RawMessage("null"),
			Error:   &RPCError{Code: CodeParseError, Message: "Parse error"},
		})
	}

	resp := d.dispatch(ctx, &req)
	if req.IsNotification() || resp == nil {
		return nil
	}
	return encode(*resp)
}

func (d *Dispatcher) dispatch(ctx context.Context, req *Request) (resp *Response) {
	// Last line of defense: nothing below may crash the transport loop.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("mcp: panic handling %q: %v", req.Method, r)
			resp = d.errorResponse(req.ID, CodeInternalError, "Internal error")
		}
	}()

	switch req.Method {
	case "initialize":
		return d.result(req.ID, d.init)

	case "notifications/initialized":
		log.Printf("mcp: client initialized")
		return nil

	case "tools/list":
		// An opaque cursor is accepted but the catalog is single-page.
		if len(req.Params) > 0 {
			var params ToolsListParams
			_ = json.Unmarshal(req.Params, &params)
		}
		return d.result(req.ID, ToolsListResult{Tools: d.tools})

	case "tools/call":
		return d.handleToolsCall(ctx, req)

	case "resources/list":
		return d.result(req.ID, ResourcesListResult{Resources: []Resource{}})

	case "resources/read":
		return d.errorResponse(req.ID, CodeMethodNotFound, "No resources available")

	default:
		return d.errorResponse(req.ID, CodeMethodNotFound, "Method not found")
	}
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req *Request) *Response {
	if len(req.Params) == 0 {
		return d.errorResponse(req.ID, CodeInvalidParams, "Invalid params")
	}
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return d.errorResponse(req.ID, CodeInvalidParams, "Invalid params")
	}

	result, err := d.invoker.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		log.Printf("mcp: tool %s faulted: %v", params.Name, err)
		return d.errorResponse(req.ID, CodeInternalError, "Internal error")
	}
	return d.result(req.ID, result)
}

func (d *Dispatcher) result(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: normalizeID(id), Result: result}
}

func (d *Dispatcher) errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: "2.0", ID: normalizeID(id), Error: &RPCError{Code: code, Message: message}}
}

// normalizeID keeps absent ids encodable as null.
func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func encode(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Result values are plain data; this should not happen. Fall back to
		// a minimal internal error so the caller still gets an envelope.
		log.Printf("mcp: marshal response: %v", err)
		fallback := Response{
			JSONRPC: "2.0",
			ID:      normalizeID(resp.ID),
			Error:   &RPCError{Code: CodeInternalError, Message: "Internal error"},
		}
		data, _ = json.Marshal(fallback)
	}
	return data
}
