package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/forth-kernel-go/internal/event"
	"github.com/wagiedev/forth-kernel-go/internal/kernel"
)

// Tool names.
const (
	ToolExecute   = "execute"
	ToolInterrupt = "interrupt"
	ToolInfo      = "kernel_info"
)

// Kernel is the part of a kernel the server drives.
type Kernel interface {
	Execute(ctx context.Context, code string, silent bool) (*kernel.Reply, error)
	Interrupt(ctx context.Context) ([]event.Event, error)
	Info() kernel.Info
}

// Server wraps the MCP SDK server around a kernel.
type Server struct {
	log     *slog.Logger
	kernel  Kernel
	name    string
	version string
	mu      sync.RWMutex
	tools   map[string]*sdkTool
}

// sdkTool holds tool metadata and handler for internal registry.
type sdkTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewServer creates a server with the kernel tools registered.
func NewServer(log *slog.Logger, k Kernel) *Server {
	s := &Server{
		log:     log.With("component", "mcp"),
		kernel:  k,
		name:    "forth-kernel",
		version: kernel.Version,
		tools:   make(map[string]*sdkTool, 4),
	}

	s.AddTool(NewTool(ToolExecute,
		"Execute Forth code in the running interpreter. Lines run in order and "+
			"execution stops at the first line that writes to stderr. Interpreter "+
			"state persists between calls.",
		SimpleSchema(map[string]string{"code": "string", "silent": "bool"}, "code"),
	), s.handleExecute)

	s.AddTool(NewTool(ToolInterrupt,
		"Send an interrupt to the interpreter to stop a runaway command.",
		SimpleSchema(nil),
	), s.handleInterrupt)

	s.AddTool(NewTool(ToolInfo,
		"Describe the kernel and the interpreter it runs.",
		SimpleSchema(nil),
	), s.handleInfo)

	return s
}

// AddTool registers a tool with the server.
func (s *Server) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools[tool.Name] = &sdkTool{
		tool:    tool,
		handler: handler,
	}
}

// Name returns the server name.
func (s *Server) Name() string {
	return s.name
}

// Version returns the server version.
func (s *Server) Version() string {
	return s.version
}

// ListTools returns all registered tools sorted by name.
func (s *Server) ListTools() []*mcp.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]*mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, t.tool)
	}

	slices.SortFunc(tools, func(a, b *mcp.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	return tools
}

// CallTool executes a tool by name with the given input.
// Failures are reported in the result, never as an error.
func (s *Server) CallTool(ctx context.Context, name string, input map[string]any) *mcp.CallToolResult {
	s.mu.RLock()
	t, exists := s.tools[name]
	s.mu.RUnlock()

	if !exists {
		return ErrorResult("Tool not found: " + name)
	}

	inputBytes, err := json.Marshal(input)
	if err != nil {
		return ErrorResult("Failed to marshal input: " + err.Error())
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: inputBytes,
		},
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		return ErrorResult("Tool execution failed: " + err.Error())
	}

	return result
}

// MCPServer builds an SDK server exposing the registered tools.
func (s *Server) MCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		server.AddTool(t.tool, t.handler)
	}

	return server
}

// Serve runs the server on transport until the client disconnects or ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	s.log.Info("Serving kernel over MCP")

	if err := s.MCPServer().Run(ctx, transport); err != nil {
		return fmt.Errorf("run mcp server: %w", err)
	}

	return nil
}

func (s *Server) handleExecute(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	code, ok := args["code"].(string)
	if !ok {
		return ErrorResult("missing required argument: code"), nil
	}

	silent, _ := args["silent"].(bool)

	reply, err := s.kernel.Execute(ctx, code, silent)
	if reply == nil {
		s.log.Debug("Execute rejected", "error", err)

		return ErrorResult(fmt.Sprintf("execute: %v", err)), nil
	}

	result := EventsResult(reply.Events)
	result.IsError = reply.Status == kernel.StatusError

	if err != nil {
		result.Content = append(result.Content, &mcp.TextContent{Text: err.Error()})
	}

	return result, nil
}

func (s *Server) handleInterrupt(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := s.kernel.Interrupt(ctx)
	if err != nil {
		return ErrorResult(fmt.Sprintf("interrupt: %v", err)), nil
	}

	if len(events) == 0 {
		return TextResult("interrupt sent"), nil
	}

	return EventsResult(events), nil
}

func (s *Server) handleInfo(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.kernel.Info())
	if err != nil {
		return nil, fmt.Errorf("marshal kernel info: %w", err)
	}

	return TextResult(string(data)), nil
}

// EventsResult converts response events into text content, one item per
// event. Stderr text is prefixed with the stream name.
func EventsResult(events []event.Event) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(events))

	for _, e := range events {
		switch v := e.(type) {
		case *event.RenderedOutput:
			content = append(content, &mcp.TextContent{Text: v.Markup})
		case *event.TextOutput:
			text := v.Text
			if v.Stream == event.Stderr {
				text = string(event.Stderr) + ": " + text
			}

			content = append(content, &mcp.TextContent{Text: text})
		case *event.ExpressionValue:
			content = append(content, &mcp.TextContent{Text: v.Text})
		}
	}

	return &mcp.CallToolResult{Content: content}
}

// SimpleSchema creates an object schema from a simple type map.
//
// Input format: {"a": "float64", "b": "string"}. Only the properties named in
// required are marked as required.
func SimpleSchema(props map[string]string, required ...string) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(props))

	for name, goType := range props {
		properties[name] = goTypeToJSONSchema(goType)
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// goTypeToJSONSchema converts a Go type string to a JSON Schema type.
func goTypeToJSONSchema(goType string) *jsonschema.Schema {
	switch goType {
	case "string":
		return &jsonschema.Schema{Type: "string"}
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return &jsonschema.Schema{Type: "integer"}
	case "float32", "float64", "float", "number":
		return &jsonschema.Schema{Type: "number"}
	case "bool", "boolean":
		return &jsonschema.Schema{Type: "boolean"}
	case "any", "object", "map[string]any":
		return &jsonschema.Schema{Type: "object"}
	default:
		if itemType, ok := strings.CutPrefix(goType, "[]"); ok && itemType != "" {
			return &jsonschema.Schema{
				Type:  "array",
				Items: goTypeToJSONSchema(itemType),
			}
		}

		return &jsonschema.Schema{Type: "string"}
	}
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// NewTool creates an mcp.Tool with the given parameters.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil {
		return make(map[string]any), nil
	}

	if len(req.Params.Arguments) == 0 {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	return args, nil
}
