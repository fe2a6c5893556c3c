package agentcli

import (
	"context"
	"encoding/json"
	"fmt"
)

// McpServer represents an in-process MCP server.
//
// MCP servers provide tools the agent can invoke. This implementation runs
// in-process, routing tool calls through the SDK control channel rather than
// spawning a separate subprocess.
//
// Use CreateMcpServer to create a new server and AddTool to register tools.
type McpServer struct {
	name    string
	version string
	tools   map[string]*toolEntry
}

// toolEntry stores tool metadata and handler.
type toolEntry struct {
	def     ToolDef
	handler func(ctx context.Context, args json.RawMessage) (ToolResult, error)
}

// ToolDef defines an MCP tool without the handler.
//
// The InputSchema field is optional. If nil, the typed registration helpers
// (AddTool, AddToolWithResponse) generate one from the handler's Args type
// via reflection (see toolschema.go) at registration time; a tool
// registered without any schema is listed by ToolDefs with an
// unconstrained object schema.
type ToolDef struct {
	Name        string      // Tool name (required).
	Description string      // Tool description (required).
	InputSchema interface{} // JSON Schema for input validation (optional).
}

// ToolResult is the result of a tool invocation.
type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolContent is one item of a tool result's content list: a text
// block, an inline image, or an embedded resource. Exactly one of
// Text, (Data, MimeType), or Resource is populated, matching Type.
type ToolContent struct {
	Type string `json:"type"` // "text", "image", or "resource".

	// Text holds the content when Type is "text".
	Text string `json:"text,omitempty"`

	// Data and MimeType hold the content when Type is "image". Data is
	// the raw image bytes; encoding/json base64-encodes it on the wire,
	// matching the MCP content-block convention.
	Data     []byte `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`

	// Resource holds the content when Type is "resource".
	Resource *EmbeddedResource `json:"resource,omitempty"`
}

// EmbeddedResource is the body of a "resource" content item.
type EmbeddedResource struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ToolRegistrar is a function that registers a tool with a server.
//
// This allows passing tools to McpServerOptions. Use Tool() or
// ToolWithResponse() to create registrars.
type ToolRegistrar func(*McpServer)

// McpServerOptions configures an in-process MCP server.
type McpServerOptions struct {
	Name    string          // Server name (required).
	Version string          // Server version (default: "1.0.0").
	Tools   []ToolRegistrar // Tools to register (optional).
}

// CreateMcpServer creates a new in-process MCP server.
//
// Example:
//
//	server := agentcli.CreateMcpServer(agentcli.McpServerOptions{
//	    Name:    "calculator",
//	    Version: "1.0.0",
//	    Tools: []agentcli.ToolRegistrar{
//	        agentcli.Tool("add", "Add two numbers", addHandler),
//	        agentcli.Tool("multiply", "Multiply two numbers", multiplyHandler),
//	    },
//	})
func CreateMcpServer(opts McpServerOptions) *McpServer {
	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}

	server := &McpServer{
		name:    opts.Name,
		version: version,
		tools:   make(map[string]*toolEntry),
	}

	for _, registrar := range opts.Tools {
		registrar(server)
	}

	return server
}

// Tool creates a ToolRegistrar for use with McpServerOptions.
//
// The generic Args type specifies the expected input type. Arguments are
// automatically unmarshaled from JSON to Args before the handler is
// invoked.
//
// Example:
//
//	type AddArgs struct {
//	    A int `json:"a"`
//	    B int `json:"b"`
//	}
//
//	server := agentcli.CreateMcpServer(agentcli.McpServerOptions{
//	    Name: "calculator",
//	    Tools: []agentcli.ToolRegistrar{
//	        agentcli.Tool("add", "Add two numbers",
//	            func(ctx context.Context, args AddArgs) (agentcli.ToolResult, error) {
//	                return agentcli.TextResult(fmt.Sprintf("%d", args.A+args.B)), nil
//	            },
//	        ),
//	    },
//	})
func Tool[Args any](
	name, description string,
	handler func(ctx context.Context, args Args) (ToolResult, error),
) ToolRegistrar {
	return func(s *McpServer) {
		s.addTool(ToolDef{Name: name, Description: description, InputSchema: schemaFor[Args]()}, func(ctx context.Context, rawArgs json.RawMessage) (ToolResult, error) {
			var args Args
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
			return handler(ctx, args)
		})
	}
}

// ToolWithResponse creates a ToolRegistrar with typed args and response.
//
// The generic Response type is automatically marshaled to JSON text
// content. This is useful when you want strongly-typed responses.
func ToolWithResponse[Args, Response any](
	name, description string,
	handler func(ctx context.Context, args Args) (Response, error),
) ToolRegistrar {
	return func(s *McpServer) {
		s.addTool(ToolDef{Name: name, Description: description, InputSchema: schemaFor[Args]()}, func(ctx context.Context, rawArgs json.RawMessage) (ToolResult, error) {
			var args Args
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
			resp, err := handler(ctx, args)
			if err != nil {
				return ErrorResult(err.Error()), nil
			}
			data, err := json.Marshal(resp)
			if err != nil {
				return ErrorResult(fmt.Sprintf("failed to marshal response: %v", err)), nil
			}
			return TextResult(string(data)), nil
		})
	}
}

// ToolWithSchema creates a ToolRegistrar with an explicit input schema.
//
// Use this when you need to specify a custom JSON schema for input
// validation instead of relying on reflection.
func ToolWithSchema[Args any](
	name, description string,
	inputSchema interface{},
	handler func(ctx context.Context, args Args) (ToolResult, error),
) ToolRegistrar {
	return func(s *McpServer) {
		s.addTool(ToolDef{Name: name, Description: description, InputSchema: inputSchema}, func(ctx context.Context, rawArgs json.RawMessage) (ToolResult, error) {
			var args Args
			if err := json.Unmarshal(rawArgs, &args); err != nil {
				return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
			return handler(ctx, args)
		})
	}
}

// AddTool registers a raw-JSON tool handler with the server.
//
// handler must be a func(context.Context, json.RawMessage) (ToolResult,
// error); any other type panics. Typed handlers go through the
// package-level AddTool[Args] instead. No InputSchema is set, so ToolDefs
// lists the tool with an unconstrained object schema. Returns the server
// for method chaining.
func (s *McpServer) AddTool(name, description string, handler interface{}) *McpServer {
	switch h := handler.(type) {
	case func(context.Context, json.RawMessage) (ToolResult, error):
		s.addTool(ToolDef{Name: name, Description: description}, h)
	default:
		panic(fmt.Sprintf("unsupported handler type: %T - use package-level AddTool[Args] for typed handlers", handler))
	}
	return s
}

// addTool is the internal method for registering tools.
func (s *McpServer) addTool(def ToolDef, handler func(ctx context.Context, args json.RawMessage) (ToolResult, error)) {
	s.tools[def.Name] = &toolEntry{
		def:     def,
		handler: handler,
	}
}

// AddTool registers a type-safe tool handler with the server (package-level
// function).
//
// The generic Args parameter specifies the expected input type. Arguments
// are automatically unmarshaled from JSON to the Args type before the
// handler is invoked.
//
// Example:
//
//	type AddArgs struct {
//	    A int `json:"a" jsonschema:"First number"`
//	    B int `json:"b" jsonschema:"Second number"`
//	}
//
//	agentcli.AddTool(server, agentcli.ToolDef{
//	    Name:        "add",
//	    Description: "Add two numbers",
//	}, func(ctx context.Context, args AddArgs) (agentcli.ToolResult, error) {
//	    return agentcli.TextResult(fmt.Sprintf("%d", args.A+args.B)), nil
//	})
func AddTool[Args any](
	server *McpServer,
	def ToolDef,
	handler func(ctx context.Context, args Args) (ToolResult, error),
) {
	if def.InputSchema == nil {
		def.InputSchema = schemaFor[Args]()
	}
	server.addTool(def, func(ctx context.Context, rawArgs json.RawMessage) (ToolResult, error) {
		var args Args
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		return handler(ctx, args)
	})
}

// AddToolWithResponse registers a tool with typed args and response.
//
// The generic Response type is automatically marshaled to JSON text
// content.
func AddToolWithResponse[Args, Response any](
	server *McpServer,
	def ToolDef,
	handler func(ctx context.Context, args Args) (Response, error),
) {
	if def.InputSchema == nil {
		def.InputSchema = schemaFor[Args]()
	}
	server.addTool(def, func(ctx context.Context, rawArgs json.RawMessage) (ToolResult, error) {
		var args Args
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		resp, err := handler(ctx, args)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return ErrorResult(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return TextResult(string(data)), nil
	})
}

// AddToolUntyped registers a tool handler that receives raw JSON
// arguments.
//
// Use this for tools that need dynamic argument handling or when you want
// to parse JSON manually.
func AddToolUntyped(
	server *McpServer,
	def ToolDef,
	handler func(ctx context.Context, args json.RawMessage) (ToolResult, error),
) {
	server.addTool(def, handler)
}

// Name returns the server name.
func (s *McpServer) Name() string {
	return s.name
}

// Version returns the server version.
func (s *McpServer) Version() string {
	return s.version
}

// ToolNames returns the names of all registered tools.
func (s *McpServer) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	return names
}

// ToolDefs returns the definitions of all registered tools. Tools
// registered via AddToolUntyped without an explicit InputSchema fall back
// to an unconstrained object schema.
func (s *McpServer) ToolDefs() []ToolDef {
	defs := make([]ToolDef, 0, len(s.tools))
	for _, entry := range s.tools {
		def := entry.def
		if def.InputSchema == nil {
			def.InputSchema = map[string]interface{}{"type": "object"}
		}
		defs = append(defs, def)
	}
	return defs
}

// CallTool invokes a tool by name with the given arguments.
//
// Returns ErrToolNotFound if the tool is not registered. Arguments that
// fail to decode into a typed handler's Args are reported via
// ToolResult.IsError. An error returned by the handler itself is passed
// through as a Go error, except for tools registered with
// ToolWithResponse or AddToolWithResponse, which report it via
// ToolResult.IsError.
func (s *McpServer) CallTool(
	ctx context.Context,
	name string,
	args json.RawMessage,
) (ToolResult, error) {
	entry, ok := s.tools[name]
	if !ok {
		return ToolResult{}, &ErrToolNotFound{ServerName: s.name, ToolName: name}
	}
	return entry.handler(ctx, args)
}

// TextResult creates a successful tool result with text content.
func TextResult(text string) ToolResult {
	return ToolResult{
		Content: []ToolContent{{Type: "text", Text: text}},
	}
}

// ErrorResult creates an error tool result with text content.
func ErrorResult(text string) ToolResult {
	return ToolResult{
		Content: []ToolContent{{Type: "text", Text: text}},
		IsError: true,
	}
}

// ImageResult creates a successful tool result with inline image content.
func ImageResult(data []byte, mimeType string) ToolResult {
	return ToolResult{
		Content: []ToolContent{ImageContent(data, mimeType)},
	}
}

// ResourceResult creates a successful tool result with embedded resource
// content. mimeType and text are optional; pass "" to omit either.
func ResourceResult(uri, mimeType, text string) ToolResult {
	return ToolResult{
		Content: []ToolContent{ResourceContent(uri, mimeType, text)},
	}
}

// MultiContentResult creates a result with multiple content items.
func MultiContentResult(contents ...ToolContent) ToolResult {
	return ToolResult{
		Content: contents,
	}
}

// TextContent creates a text content item.
func TextContent(text string) ToolContent {
	return ToolContent{Type: "text", Text: text}
}

// ImageContent creates an inline image content item.
func ImageContent(data []byte, mimeType string) ToolContent {
	return ToolContent{Type: "image", Data: data, MimeType: mimeType}
}

// ResourceContent creates an embedded resource content item. mimeType
// and text are optional; pass "" to omit either.
func ResourceContent(uri, mimeType, text string) ToolContent {
	return ToolContent{
		Type:     "resource",
		Resource: &EmbeddedResource{URI: uri, MimeType: mimeType, Text: text},
	}
}
