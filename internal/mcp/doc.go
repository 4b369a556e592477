// Package mcp exposes a kernel as a Model Context Protocol server.
//
// Any MCP client can then act as the notebook front-end: the execute tool runs
// a cell and returns its response events as text content, and the interrupt
// tool signals a runaway cell. The server keeps its own tool registry so tools
// can also be invoked directly with CallTool.
package mcp
