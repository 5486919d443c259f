// Package mcp exposes window snapping to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snaptile/internal/ipc"
	"github.com/1broseidon/snaptile/internal/tiling"
)

const (
	ServerName    = "snaptile"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	Snap(direction string) (*tiling.SnapResult, error)
	Place(position string) (*tiling.SnapResult, error)
	Query() (*tiling.SnapResult, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for snaptile. Every tool forwards to the running
// daemon, which owns the cycle state.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server backed by daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		daemon: daemon,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.mcpServer
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap the focused window one step through a cycle. direction=left cycles left third, left two-thirds, fullscreen; direction=right cycles right third, right two-thirds, fullscreen. Returns the observed and new positions.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "place_window",
		Description: "Move the focused window directly to a position: left, center, right, left-two-thirds, right-two-thirds or fullscreen.",
	}, s.handlePlaceWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_position",
		Description: "Report which position the focused window currently occupies, without moving it.",
	}, s.handleGetWindowPosition)
}
