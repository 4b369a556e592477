package forthkernel

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	internalmcp "github.com/wagiedev/forth-kernel-go/internal/mcp"
)

// MCPServer exposes a kernel to MCP clients through the execute, interrupt and
// kernel_info tools.
type MCPServer = internalmcp.Server

// NewMCPServer creates an MCP server for a started kernel.
// If log is nil, logging is disabled.
func NewMCPServer(k Kernel, log *slog.Logger) *MCPServer {
	if log == nil {
		log = NopLogger()
	}

	return internalmcp.NewServer(log, k)
}

// ServeMCP serves a started kernel over transport until the client
// disconnects or ctx is cancelled.
//
// Example usage:
//
//	err := forthkernel.WithKernel(ctx, func(k forthkernel.Kernel) error {
//	    return forthkernel.ServeMCP(ctx, k, &mcp.StdioTransport{}, log)
//	})
func ServeMCP(ctx context.Context, k Kernel, transport mcp.Transport, log *slog.Logger) error {
	return NewMCPServer(k, log).Serve(ctx, transport)
}
