package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snaptile/internal/layout"
)

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	dir, err := layout.ParseDirection(args.Direction)
	if err != nil {
		return nil, WindowOutput{}, err
	}

	res, err := s.daemon.Snap(dir.String())
	if err != nil {
		s.logger.Warn("mcp snap_window failed", "direction", dir, "error", err)
		return nil, WindowOutput{}, fmt.Errorf("snap %s: %w", dir, err)
	}
	s.logger.Debug("mcp snap_window", "direction", dir, "next", res.Next)
	return nil, windowOutput(res), nil
}

func (s *Server) handlePlaceWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args PlaceWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	p, err := layout.ParsePosition(args.Position)
	if err != nil {
		return nil, WindowOutput{}, err
	}

	res, err := s.daemon.Place(p.String())
	if err != nil {
		s.logger.Warn("mcp place_window failed", "position", p, "error", err)
		return nil, WindowOutput{}, fmt.Errorf("place %s: %w", p, err)
	}
	return nil, windowOutput(res), nil
}

func (s *Server) handleGetWindowPosition(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetWindowPositionInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	res, err := s.daemon.Query()
	if err != nil {
		return nil, WindowOutput{}, fmt.Errorf("query: %w", err)
	}
	return nil, windowOutput(res), nil
}
