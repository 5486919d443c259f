package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/tiling"
)

// Tiler is the subset of tiling.Tiler served over IPC.
type Tiler interface {
	Snap(dir layout.Direction) (tiling.SnapResult, error)
	Place(p layout.Position) (tiling.SnapResult, error)
	Query() (tiling.SnapResult, error)
	Stats() tiling.Stats
}

// ReloadFunc reloads configuration on RELOAD and returns the path it read.
type ReloadFunc func() (string, error)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	tiler        Tiler
	reload       ReloadFunc
	logger       *slog.Logger
	startTime    time.Time
	configPath   string
	configMu     sync.RWMutex
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server listening on socketPath. reload may be
// nil, in which case RELOAD is rejected.
func NewServer(socketPath string, tiler Tiler, reload ReloadFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		tiler:      tiler,
		reload:     reload,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// SetConfigPath records the config path reported by GET_STATUS.
func (s *Server) SetConfigPath(path string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.configPath = path
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket from a previous run.
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandSnap:
		return s.handleSnap(req.Payload)
	case CommandPlace:
		return s.handlePlace(req.Payload)
	case CommandQuery:
		return s.handleQuery()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleSnap(payload json.RawMessage) *Response {
	var req SnapPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid snap payload: %v", err))
	}
	dir, err := layout.ParseDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	res, err := s.tiler.Snap(dir)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to snap %s: %v", dir, err))
	}
	return okResponse(res)
}

func (s *Server) handlePlace(payload json.RawMessage) *Response {
	var req PlacePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid place payload: %v", err))
	}
	pos, err := layout.ParsePosition(req.Position)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	res, err := s.tiler.Place(pos)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to place window %s: %v", pos, err))
	}
	return okResponse(res)
}

func (s *Server) handleQuery() *Response {
	res, err := s.tiler.Query()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to query focused window: %v", err))
	}
	return okResponse(res)
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	s.configMu.RLock()
	path := s.configPath
	s.configMu.RUnlock()

	return okResponse(StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		ConfigPath:    path,
		Stats:         s.tiler.Stats(),
	})
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	if s.reload == nil {
		return NewErrorResponse("reload is not supported")
	}

	s.logger.Info("IPC: reloading config")
	path, err := s.reload()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.SetConfigPath(path)

	resp, _ := NewOKResponse(nil)
	return resp
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	_, _ = conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
