package agentcli

import (
	"context"
	"encoding/json"
)

// JSON-RPC 2.0 standard error codes.
const (
	RPCParseError     = -32700
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCInternalError  = -32603
)

// RPCRequest is the JSON-RPC 2.0 envelope carried inside an mcp_message
// control request's "message" field.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RPCResponse is the JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToolRouter routes inbound mcp_message JSON-RPC envelopes to
// user-registered in-process McpServers by name.
//
// Each server is immutable once registered: its tool set doesn't change
// across the life of a session, so routing needs no lock beyond the
// lookup table itself.
type ToolRouter struct {
	servers map[string]*McpServer
}

// NewToolRouter creates a router over the given named servers.
func NewToolRouter(servers map[string]*McpServer) *ToolRouter {
	cp := make(map[string]*McpServer, len(servers))
	for k, v := range servers {
		cp[k] = v
	}
	return &ToolRouter{servers: cp}
}

// ServerNames returns the registered server names, used to populate the
// initialize control request's sdkMcpServers list.
func (r *ToolRouter) ServerNames() []string {
	names := make([]string, 0, len(r.servers))
	for name := range r.servers {
		names = append(names, name)
	}
	return names
}

// HandleMessage dispatches one JSON-RPC request to the named server and
// returns the JSON-RPC response envelope. An unknown server name is
// returned as a Go error (ErrToolServerNotFound). An unparseable envelope,
// an unknown method, bad tools/call params, and any error from the tool
// call are carried as an RPCError in the envelope, with a nil Go error.
func (r *ToolRouter) HandleMessage(ctx context.Context, serverName string, raw json.RawMessage) (RPCResponse, error) {
	var req RPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return RPCResponse{JSONRPC: "2.0", Error: &RPCError{Code: RPCParseError, Message: err.Error()}}, nil
	}

	server, ok := r.servers[serverName]
	if !ok {
		return RPCResponse{}, &ErrToolServerNotFound{ServerName: serverName}
	}

	resp := RPCResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{"listChanged": false},
			},
			"serverInfo": map[string]interface{}{
				"name":    server.Name(),
				"version": server.Version(),
			},
		}

	case "tools/list":
		defs := server.ToolDefs()
		tools := make([]map[string]interface{}, 0, len(defs))
		for _, def := range defs {
			tools = append(tools, map[string]interface{}{
				"name":        def.Name,
				"description": def.Description,
				"inputSchema": def.InputSchema,
			})
		}
		resp.Result = map[string]interface{}{"tools": tools}

	case "tools/call":
		var params struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &RPCError{Code: RPCInvalidParams, Message: err.Error()}
			break
		}
		result, err := server.CallTool(ctx, params.Name, params.Arguments)
		if err != nil {
			resp.Error = &RPCError{Code: RPCMethodNotFound, Message: err.Error()}
			break
		}
		resp.Result = result

	default:
		resp.Error = &RPCError{Code: RPCMethodNotFound, Message: "unknown method: " + req.Method}
	}

	return resp, nil
}
