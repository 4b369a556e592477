package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	kerrors "github.com/wagiedev/forth-kernel-go/internal/errors"
	"github.com/wagiedev/forth-kernel-go/internal/event"
	"github.com/wagiedev/forth-kernel-go/internal/kernel"
)

// mockKernel implements Kernel for testing.
type mockKernel struct {
	reply     *kernel.Reply
	err       error
	interrupt []event.Event

	code   string
	silent bool
}

func (m *mockKernel) Execute(_ context.Context, code string, silent bool) (*kernel.Reply, error) {
	m.code = code
	m.silent = silent

	return m.reply, m.err
}

func (m *mockKernel) Interrupt(context.Context) ([]event.Event, error) {
	return m.interrupt, m.err
}

func (m *mockKernel) Info() kernel.Info {
	return kernel.Info{Language: "forth", LanguageVersion: "Gforth 0.7.3"}
}

func newTestServer(k Kernel) *Server {
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), k)
}

func texts(t *testing.T, result *mcpgo.CallToolResult) []string {
	t.Helper()

	out := make([]string, 0, len(result.Content))
	for _, c := range result.Content {
		text, ok := c.(*mcpgo.TextContent)
		require.True(t, ok, "expected text content, got %T", c)

		out = append(out, text.Text)
	}

	return out
}

func TestServerMetadata(t *testing.T) {
	server := newTestServer(&mockKernel{})

	require.Equal(t, "forth-kernel", server.Name())
	require.Equal(t, kernel.Version, server.Version())

	tools := server.ListTools()
	require.Len(t, tools, 3)
	require.Equal(t, ToolExecute, tools[0].Name)
	require.Equal(t, ToolInterrupt, tools[1].Name)
	require.Equal(t, ToolInfo, tools[2].Name)
}

func TestExecuteSchema(t *testing.T) {
	server := newTestServer(&mockKernel{})

	tool := server.ListTools()[0]

	schema, ok := tool.InputSchema.(*jsonschema.Schema)
	require.True(t, ok)
	require.Equal(t, "object", schema.Type)
	require.Equal(t, []string{"code"}, schema.Required)
	require.Equal(t, "string", schema.Properties["code"].Type)
	require.Equal(t, "boolean", schema.Properties["silent"].Type)
}

func TestCallTool_Execute(t *testing.T) {
	k := &mockKernel{reply: &kernel.Reply{
		Status: kernel.StatusOK,
		Events: []event.Event{
			&event.RenderedOutput{MIMEType: "text/html", Markup: "<pre>1 2 + .<b> 3  ok</b></pre>"},
			&event.ExpressionValue{Text: "<1> 3"},
		},
	}}
	server := newTestServer(k)

	result := server.CallTool(context.Background(), ToolExecute, map[string]any{"code": "1 2 + .", "silent": true})

	require.False(t, result.IsError)
	require.Equal(t, []string{"<pre>1 2 + .<b> 3  ok</b></pre>", "<1> 3"}, texts(t, result))
	require.Equal(t, "1 2 + .", k.code)
	require.True(t, k.silent)
}

func TestCallTool_ExecuteLineFailure(t *testing.T) {
	server := newTestServer(&mockKernel{reply: &kernel.Reply{
		Status: kernel.StatusError,
		Events: []event.Event{event.Stdio(event.Stderr, ":1: Undefined word\n")},
	}})

	result := server.CallTool(context.Background(), ToolExecute, map[string]any{"code": "foo"})

	require.True(t, result.IsError)
	require.Equal(t, []string{"stderr: :1: Undefined word\n"}, texts(t, result))
}

func TestCallTool_ExecuteProcessDeath(t *testing.T) {
	server := newTestServer(&mockKernel{
		reply: &kernel.Reply{
			Status: kernel.StatusError,
			Events: []event.Event{event.Stdio(event.Stderr, "process terminated")},
		},
		err: &kerrors.ProcessError{ExitCode: 3},
	})

	result := server.CallTool(context.Background(), ToolExecute, map[string]any{"code": "crash"})

	require.True(t, result.IsError)

	got := texts(t, result)
	require.Equal(t, "stderr: process terminated", got[0])
	require.Contains(t, got[1], "exit 3")
}

func TestCallTool_ExecuteDeadKernel(t *testing.T) {
	server := newTestServer(&mockKernel{err: kerrors.ErrSessionDead})

	result := server.CallTool(context.Background(), ToolExecute, map[string]any{"code": "1"})

	require.True(t, result.IsError)
	require.Contains(t, texts(t, result)[0], "session dead")
}

func TestCallTool_ExecuteMissingCode(t *testing.T) {
	server := newTestServer(&mockKernel{})

	result := server.CallTool(context.Background(), ToolExecute, map[string]any{})

	require.True(t, result.IsError)
	require.Equal(t, []string{"missing required argument: code"}, texts(t, result))
}

func TestCallTool_Interrupt(t *testing.T) {
	server := newTestServer(&mockKernel{interrupt: []event.Event{
		event.Stdio(event.Stderr, ":1: User interrupt\n"),
	}})

	result := server.CallTool(context.Background(), ToolInterrupt, nil)
	require.False(t, result.IsError)
	require.Equal(t, []string{"stderr: :1: User interrupt\n"}, texts(t, result))

	server = newTestServer(&mockKernel{})
	result = server.CallTool(context.Background(), ToolInterrupt, nil)
	require.Equal(t, []string{"interrupt sent"}, texts(t, result))
}

func TestCallTool_Info(t *testing.T) {
	server := newTestServer(&mockKernel{})

	result := server.CallTool(context.Background(), ToolInfo, nil)
	require.False(t, result.IsError)

	var info kernel.Info
	require.NoError(t, json.Unmarshal([]byte(texts(t, result)[0]), &info))
	require.Equal(t, "Gforth 0.7.3", info.LanguageVersion)
}

func TestCallTool_UnknownAndFailingTools(t *testing.T) {
	server := newTestServer(&mockKernel{})

	missing := server.CallTool(context.Background(), "unknown", nil)
	require.True(t, missing.IsError)

	server.AddTool(
		NewTool("fails", "always fails", SimpleSchema(nil)),
		func(_ context.Context, _ *mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			return nil, errors.New("boom")
		},
	)

	result := server.CallTool(context.Background(), "fails", nil)
	require.True(t, result.IsError)
	require.Equal(t, []string{"Tool execution failed: boom"}, texts(t, result))
}

func TestServe_InMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := newTestServer(&mockKernel{reply: &kernel.Reply{
		Status: kernel.StatusOK,
		Events: []event.Event{&event.ExpressionValue{Text: "<1> 3"}},
	}})

	clientTransport, serverTransport := mcpgo.NewInMemoryTransports()

	serverSession, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	defer serverSession.Close()

	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 3)

	result, err := session.CallTool(ctx, &mcpgo.CallToolParams{
		Name:      ToolExecute,
		Arguments: map[string]any{"code": "1 2 +"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, []string{"<1> 3"}, texts(t, result))
}

func TestEventsResult(t *testing.T) {
	result := EventsResult([]event.Event{
		&event.RenderedOutput{Markup: "<pre>x</pre>"},
		event.Stdio(event.Stdout, "out"),
		event.Stdio(event.Stderr, "err"),
		&event.ExpressionValue{Text: "<1> 1"},
	})

	require.Equal(t, []string{"<pre>x</pre>", "out", "stderr: err", "<1> 1"}, texts(t, result))
	require.Empty(t, EventsResult(nil).Content)
}

func TestSimpleSchema(t *testing.T) {
	schema := SimpleSchema(map[string]string{
		"name":   "string",
		"active": "bool",
		"scores": "[]float64",
	}, "name")

	require.Equal(t, "object", schema.Type)
	require.Equal(t, []string{"name"}, schema.Required)
	require.Equal(t, "string", schema.Properties["name"].Type)
	require.Equal(t, "boolean", schema.Properties["active"].Type)
	require.Equal(t, "array", schema.Properties["scores"].Type)
	require.Equal(t, "number", schema.Properties["scores"].Items.Type)
}

func TestGoTypeToJSONSchema(t *testing.T) {
	tests := []struct {
		name      string
		goType    string
		wantType  string
		wantItems *string
	}{
		{
			name:     "string",
			goType:   "string",
			wantType: "string",
		},
		{
			name:     "integer",
			goType:   "int64",
			wantType: "integer",
		},
		{
			name:     "number",
			goType:   "float32",
			wantType: "number",
		},
		{
			name:     "boolean",
			goType:   "boolean",
			wantType: "boolean",
		},
		{
			name:     "object",
			goType:   "map[string]any",
			wantType: "object",
		},
		{
			name:      "array",
			goType:    "[]int",
			wantType:  "array",
			wantItems: strPtr("integer"),
		},
		{
			name:     "fallback",
			goType:   "customType",
			wantType: "string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := goTypeToJSONSchema(tt.goType)

			require.Equal(t, tt.wantType, got.Type)

			if tt.wantItems != nil {
				require.NotNil(t, got.Items)
				require.Equal(t, *tt.wantItems, got.Items.Type)
			}
		})
	}
}

func TestParseArguments(t *testing.T) {
	t.Run("nil request and empty args return empty map", func(t *testing.T) {
		args, err := ParseArguments(nil)
		require.NoError(t, err)
		require.Empty(t, args)

		args, err = ParseArguments(&mcpgo.CallToolRequest{Params: &mcpgo.CallToolParamsRaw{}})
		require.NoError(t, err)
		require.Empty(t, args)
	})

	t.Run("valid arguments are parsed", func(t *testing.T) {
		req := &mcpgo.CallToolRequest{
			Params: &mcpgo.CallToolParamsRaw{
				Arguments: []byte(`{"code":"1 2 +","silent":true}`),
			},
		}

		args, err := ParseArguments(req)
		require.NoError(t, err)
		require.Equal(t, "1 2 +", args["code"])
		require.Equal(t, true, args["silent"])
	})

	t.Run("invalid json returns wrapped error", func(t *testing.T) {
		req := &mcpgo.CallToolRequest{
			Params: &mcpgo.CallToolParamsRaw{
				Arguments: []byte(`{"code":`),
			},
		}

		args, err := ParseArguments(req)
		require.Error(t, err)
		require.Nil(t, args)
		require.Contains(t, err.Error(), "failed to unmarshal arguments")
	})
}

func strPtr(s string) *string {
	return &s
}
