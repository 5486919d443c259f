package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/platform"
	"github.com/1broseidon/snaptile/internal/tiling"
)

type fakeTiler struct {
	mu     sync.Mutex
	snaps  []layout.Direction
	places []layout.Position
	err    error
}

func (f *fakeTiler) Snap(dir layout.Direction) (tiling.SnapResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tiling.SnapResult{}, f.err
	}
	f.snaps = append(f.snaps, dir)
	return tiling.SnapResult{
		Action:   dir.String(),
		Title:    "editor",
		Observed: layout.Left,
		Next:     layout.NextPosition(dir, layout.Left),
		Rect:     platform.Rect{Width: 1000, Height: 1000},
	}, nil
}

func (f *fakeTiler) Place(p layout.Position) (tiling.SnapResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.places = append(f.places, p)
	return tiling.SnapResult{Action: tiling.ActionPlace, Next: p}, nil
}

func (f *fakeTiler) Query() (tiling.SnapResult, error) {
	remembered := layout.Fullscreen
	return tiling.SnapResult{
		Action:     tiling.ActionQuery,
		Observed:   layout.Center,
		Next:       layout.Center,
		Remembered: &remembered,
	}, nil
}

func (f *fakeTiler) Stats() tiling.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return tiling.Stats{Backend: "fake", TrackedWindows: 3, Snaps: len(f.snaps)}
}

func startServer(t *testing.T, tiler Tiler, reload ReloadFunc) (*Server, *Client) {
	t.Helper()

	socket := filepath.Join(t.TempDir(), "s.sock")
	srv := NewServer(socket, tiler, reload, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)

	return srv, NewClientWithSocket(socket)
}

func TestRoundTrip_Snap(t *testing.T) {
	t.Parallel()

	tiler := &fakeTiler{}
	_, client := startServer(t, tiler, nil)

	res, err := client.Snap("left")
	require.NoError(t, err)
	assert.Equal(t, layout.LeftTwoThirds, res.Next)
	assert.Equal(t, layout.Left, res.Observed)
	assert.Equal(t, "editor", res.Title)
	assert.Equal(t, platform.Rect{Width: 1000, Height: 1000}, res.Rect)

	_, err = client.Snap("RIGHT")
	require.NoError(t, err)
	tiler.mu.Lock()
	assert.Equal(t, []layout.Direction{layout.DirLeft, layout.DirRight}, tiler.snaps)
	tiler.mu.Unlock()

	_, err = client.Snap("up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown direction")
}

func TestRoundTrip_SnapError(t *testing.T) {
	t.Parallel()

	_, client := startServer(t, &fakeTiler{err: platform.ErrNoFocusedWindow}, nil)

	_, err := client.Snap("left")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no focused window")
}

func TestRoundTrip_PlaceAndQuery(t *testing.T) {
	t.Parallel()

	tiler := &fakeTiler{}
	_, client := startServer(t, tiler, nil)

	res, err := client.Place("right_two_thirds")
	require.NoError(t, err)
	assert.Equal(t, layout.RightTwoThirds, res.Next)

	_, err = client.Place("middle")
	require.Error(t, err)

	q, err := client.Query()
	require.NoError(t, err)
	assert.Equal(t, layout.Center, q.Observed)
	require.NotNil(t, q.Remembered)
	assert.Equal(t, layout.Fullscreen, *q.Remembered)
}

func TestRoundTrip_StatusAndReload(t *testing.T) {
	t.Parallel()

	var reloads atomic.Int32
	reload := func() (string, error) {
		if reloads.Add(1) > 1 {
			return "", errors.New("bad yaml")
		}
		return "/etc/snaptile.yaml", nil
	}
	_, client := startServer(t, &fakeTiler{}, reload)

	require.NoError(t, client.Reload())
	err := client.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad yaml")

	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	assert.Equal(t, "fake", status.Backend)
	assert.Equal(t, 3, status.TrackedWindows)
	assert.Equal(t, "/etc/snaptile.yaml", status.ConfigPath)
	require.NoError(t, client.Ping())
}

func TestReload_Unsupported(t *testing.T) {
	t.Parallel()

	_, client := startServer(t, &fakeTiler{}, nil)
	require.Error(t, client.Reload())
}

func TestServer_RejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	srv, _ := startServer(t, &fakeTiler{}, nil)

	send := func(line string) Response {
		conn, err := net.Dial("unix", srv.socketPath)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Write([]byte(line + "\n"))
		require.NoError(t, err)

		data, err := bufio.NewReader(conn).ReadBytes('\n')
		require.NoError(t, err)

		var resp Response
		require.NoError(t, json.Unmarshal(data, &resp))
		return resp
	}

	resp := send("not json")
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Invalid request")

	resp = send(`{"command":"TILE"}`)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Unknown command")

	resp = send(`{"command":"SNAP","payload":{"direction":7}}`)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "Invalid snap payload")
}

func TestServer_SocketPermissionsAndCleanup(t *testing.T) {
	t.Parallel()

	socket := filepath.Join(t.TempDir(), "s.sock")
	// A stale file from a crashed daemon must not block startup.
	require.NoError(t, os.WriteFile(socket, nil, 0o644))

	srv := NewServer(socket, &fakeTiler{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	require.Eventually(t, func() bool {
		info, err := os.Stat(socket)
		return err == nil && info.Mode()&os.ModeSocket != 0
	}, 2*time.Second, 10*time.Millisecond)

	info, err := os.Stat(socket)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cancel()
	require.NoError(t, <-done)
	_, err = os.Stat(socket)
	assert.True(t, os.IsNotExist(err))
}

func TestClient_NoDaemon(t *testing.T) {
	t.Parallel()

	client := NewClientWithSocket(filepath.Join(t.TempDir(), "missing.sock"))
	err := client.Ping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is the daemon running?")
}
