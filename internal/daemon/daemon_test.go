package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/snaptile/internal/config"
	"github.com/1broseidon/snaptile/internal/ipc"
	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/platform"
	"github.com/1broseidon/snaptile/internal/tiling"
)

type fakeBackend struct {
	mu     sync.Mutex
	window platform.Window
	moves  []platform.Rect
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) FocusedWindow() (platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.window, nil
}

func (f *fakeBackend) ActiveScreen() (platform.Screen, error) {
	r := platform.Rect{Width: 1500, Height: 1000}
	return platform.Screen{ID: 1, Name: "fake-0", Bounds: r, Usable: r}, nil
}

func (f *fakeBackend) MoveResize(_ platform.WindowID, bounds platform.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, bounds)
	return nil
}

// fakeHotkeys refuses to grab busyHotkey, the way X11 rejects a key another
// client already holds.
type fakeHotkeys struct {
	mu          sync.Mutex
	bound       *config.Config
	released    bool
	interleaved bool
	registered  int
}

const busyHotkey = "Mod4-Mod1-h"

func (f *fakeHotkeys) RegisterAll(cfg *config.Config) error {
	f.mu.Lock()
	f.released = false
	f.mu.Unlock()

	// Widen the window in which an unserialized reload could interleave.
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered++
	if cfg.SnapLeftHotkey == busyHotkey {
		return errors.New("key already grabbed by another client")
	}
	f.bound = cfg
	return nil
}

func (f *fakeHotkeys) UnregisterAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		f.interleaved = true
	}
	f.released = true
	f.bound = nil
}

func (f *fakeHotkeys) leftHotkey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bound == nil {
		return ""
	}
	return f.bound.SnapLeftHotkey
}

func withHotkeys(t *testing.T, h hotkeyBinder) {
	t.Helper()
	prev := newHotkeyBinder
	newHotkeyBinder = func(platform.Backend, *tiling.Tiler, *slog.Logger) (hotkeyBinder, error) {
		return h, nil
	}
	t.Cleanup(func() { newHotkeyBinder = prev })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type runningDaemon struct {
	client     *ipc.Client
	configPath string
	pidPath    string
	cancel     context.CancelFunc
	done       chan error
}

func startDaemon(t *testing.T, backend platform.Backend, configYAML string) *runningDaemon {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	socket := filepath.Join(dir, "d.sock")
	pidPath := filepath.Join(dir, "d.pid")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			ConfigPath: configPath,
			SocketPath: socket,
			PIDPath:    pidPath,
			Backend:    backend,
			Logger:     discardLogger(),
		})
	}()

	client := ipc.NewClientWithSocket(socket)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 5*time.Second, 20*time.Millisecond)

	d := &runningDaemon{client: client, configPath: configPath, pidPath: pidPath, cancel: cancel, done: done}
	t.Cleanup(func() { d.stop(t) })
	return d
}

func (d *runningDaemon) stop(t *testing.T) {
	t.Helper()
	if d.cancel == nil {
		return
	}
	d.cancel()
	d.cancel = nil
	select {
	case err := <-d.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestRunServesSnapsOverIPC(t *testing.T) {
	backend := &fakeBackend{window: platform.Window{
		ID: 7, Title: "term", Bounds: platform.Rect{Width: 500, Height: 1000},
	}}
	d := startDaemon(t, backend, "watch_config: false\n")

	res, err := d.client.Snap("left")
	require.NoError(t, err)
	assert.Equal(t, layout.Left, res.Observed)
	assert.Equal(t, layout.LeftTwoThirds, res.Next)
	assert.Equal(t, platform.Rect{Width: 1000, Height: 1000}, res.Rect)

	status, err := d.client.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.DaemonRunning)
	assert.Equal(t, d.configPath, status.ConfigPath)
	assert.Equal(t, "fake", status.Backend)
	assert.Equal(t, 1, status.TrackedWindows)

	pid, err := os.ReadFile(d.pidPath)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(pid))

	d.stop(t)
	_, err = os.Stat(d.pidPath)
	assert.True(t, os.IsNotExist(err), "pid file should be removed on shutdown")
	assert.Error(t, d.client.Ping())
}

func TestRunReloadAppliesPadding(t *testing.T) {
	backend := &fakeBackend{window: platform.Window{
		ID: 7, Title: "term", Bounds: platform.Rect{Width: 500, Height: 1000},
	}}
	d := startDaemon(t, backend, "watch_config: false\n")

	require.NoError(t, os.WriteFile(d.configPath, []byte("watch_config: false\nscreen_padding:\n  top: 10\n"), 0644))
	require.NoError(t, d.client.Reload())

	res, err := d.client.Snap("right")
	require.NoError(t, err)
	assert.Equal(t, layout.Right, res.Next)
	assert.Equal(t, platform.Rect{X: 1000, Y: 10, Width: 500, Height: 990}, res.Rect)
}

func TestRunReloadRejectsInvalidConfig(t *testing.T) {
	d := startDaemon(t, &fakeBackend{}, "watch_config: false\n")

	require.NoError(t, os.WriteFile(d.configPath, []byte("screen_frame: sideways\n"), 0644))
	err := d.client.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screen_frame")

	// The daemon keeps serving with the previous config.
	require.NoError(t, d.client.Ping())
}

func TestRunReloadKeepsPreviousConfigWhenHotkeysFail(t *testing.T) {
	keys := &fakeHotkeys{}
	withHotkeys(t, keys)

	backend := &fakeBackend{window: platform.Window{
		ID: 7, Title: "term", Bounds: platform.Rect{Width: 500, Height: 1000},
	}}
	d := startDaemon(t, backend, "watch_config: false\nsnap_left_hotkey: Mod4-a\n")
	require.Equal(t, "Mod4-a", keys.leftHotkey())

	require.NoError(t, os.WriteFile(d.configPath, []byte("watch_config: false\nsnap_left_hotkey: "+busyHotkey+"\nscreen_padding:\n  left: 30\n"), 0644))
	err := d.client.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "re-register hotkeys")

	assert.Equal(t, "Mod4-a", keys.leftHotkey(), "previous hotkeys should be grabbed again")
	res, err := d.client.Query()
	require.NoError(t, err)
	assert.Equal(t, 0, res.Screen.X, "padding from the rejected config must not apply")

	require.NoError(t, os.WriteFile(d.configPath, []byte("watch_config: false\nsnap_left_hotkey: Mod4-j\nscreen_padding:\n  left: 30\n"), 0644))
	require.NoError(t, d.client.Reload())
	assert.Equal(t, "Mod4-j", keys.leftHotkey())
	res, err = d.client.Query()
	require.NoError(t, err)
	assert.Equal(t, 30, res.Screen.X)
}

func TestReloadIsSerialized(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("snap_left_hotkey: Mod4-j\n"), 0644))

	cfg := config.DefaultConfig()
	keys := &fakeHotkeys{bound: cfg}
	backend := &fakeBackend{}
	d := &daemon{
		logger:     discardLogger(),
		configPath: configPath,
		backend:    backend,
		tiler:      tiling.NewTiler(backend, cfg),
		hotkeys:    keys,
		cfg:        cfg,
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.reload()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, keys.interleaved, "two reloads released grabs concurrently")
	assert.Equal(t, 1, keys.registered, "only the first reload should rebind")
	assert.Equal(t, "Mod4-j", keys.leftHotkey())
}

func TestRunWatchesConfigFile(t *testing.T) {
	backend := &fakeBackend{window: platform.Window{
		ID: 7, Title: "term", Bounds: platform.Rect{Width: 500, Height: 1000},
	}}
	d := startDaemon(t, backend, "watch_config: true\n")

	require.NoError(t, os.WriteFile(d.configPath, []byte("watch_config: true\nscreen_padding:\n  left: 30\n"), 0644))

	require.Eventually(t, func() bool {
		res, err := d.client.Query()
		return err == nil && res.Screen.X == 30
	}, 5*time.Second, 50*time.Millisecond)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("bogus_key: 1\n"), 0644))

	err := Run(context.Background(), Options{
		ConfigPath: configPath,
		SocketPath: filepath.Join(dir, "d.sock"),
		PIDPath:    filepath.Join(dir, "d.pid"),
		Backend:    &fakeBackend{},
		Logger:     discardLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestWritePIDFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("fresh", func(t *testing.T) {
		path := filepath.Join(dir, "fresh.pid")
		require.NoError(t, writePIDFile(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
	})

	t.Run("stale pid is replaced", func(t *testing.T) {
		path := filepath.Join(dir, "stale.pid")
		require.NoError(t, os.WriteFile(path, []byte("2147483646"), 0600))
		require.NoError(t, writePIDFile(path))
	})

	t.Run("live pid is refused", func(t *testing.T) {
		path := filepath.Join(dir, "live.pid")
		require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0600))
		err := writePIDFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already running")
	})
}

func TestHotkeysChanged(t *testing.T) {
	t.Parallel()

	base := config.DefaultConfig()

	same := config.DefaultConfig()
	assert.False(t, hotkeysChanged(base, same))

	left := config.DefaultConfig()
	left.SnapLeftHotkey = "Mod4-h"
	assert.True(t, hotkeysChanged(base, left))

	place := config.DefaultConfig()
	place.PlaceHotkeys = map[string]string{"center": "Mod4-c"}
	assert.True(t, hotkeysChanged(base, place))

	padding := config.DefaultConfig()
	padding.ScreenPadding.Top = 20
	assert.False(t, hotkeysChanged(base, padding))
}
