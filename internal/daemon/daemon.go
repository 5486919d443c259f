// Package daemon runs the long-lived snaptile process: hotkeys, IPC, config
// reloads and the optional metrics endpoint.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strconv"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/snaptile/internal/config"
	"github.com/1broseidon/snaptile/internal/hotkeys"
	"github.com/1broseidon/snaptile/internal/ipc"
	"github.com/1broseidon/snaptile/internal/metrics"
	"github.com/1broseidon/snaptile/internal/platform"
	"github.com/1broseidon/snaptile/internal/runtimepath"
	"github.com/1broseidon/snaptile/internal/tiling"
)

// Options configures Run. Zero values select the standard locations and the
// backend named in the config.
type Options struct {
	ConfigPath string
	SocketPath string
	PIDPath    string
	Backend    platform.Backend
	Logger     *slog.Logger
}

type eventLooper interface {
	EventLoop()
	Quit()
}

type disconnecter interface {
	Disconnect()
}

// hotkeyBinder owns the global key grabs.
type hotkeyBinder interface {
	RegisterAll(cfg *config.Config) error
	UnregisterAll()
}

// newHotkeyBinder is replaced in tests; the real handler needs an X server.
var newHotkeyBinder = func(backend platform.Backend, tiler *tiling.Tiler, logger *slog.Logger) (hotkeyBinder, error) {
	h, err := hotkeys.NewHandler(backend, tiler, logger)
	if err != nil {
		return nil, err
	}
	return h, nil
}

type daemon struct {
	logger     *slog.Logger
	configPath string
	backend    platform.Backend
	tiler      *tiling.Tiler
	hotkeys    hotkeyBinder

	// mu serializes reloads from SIGHUP, the watcher and IPC.
	mu      sync.Mutex
	cfg     *config.Config
	watcher *ConfigWatcher
}

// Run starts the daemon and blocks until ctx is cancelled, SIGINT or SIGTERM
// arrives, or a component fails. SIGHUP reloads the configuration.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	res, err := config.LoadFromPath(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	backend := opts.Backend
	if backend == nil {
		backend, err = platform.Detect(cfg.Backend)
		if err != nil {
			return fmt.Errorf("failed to open window system backend: %w", err)
		}
	}
	if dc, ok := backend.(disconnecter); ok {
		defer dc.Disconnect()
	}
	logger.Info("snaptile daemon starting", "backend", backend.Name(), "config", configPath)

	m := metrics.New()
	tiler := tiling.NewTiler(backend, cfg, tiling.WithMetrics(m), tiling.WithLogger(logger))

	d := &daemon{
		logger:     logger,
		configPath: configPath,
		backend:    backend,
		tiler:      tiler,
		cfg:        cfg,
	}
	if err := d.bindHotkeys(cfg); err != nil {
		return err
	}

	socketPath := opts.SocketPath
	if socketPath == "" {
		if socketPath, err = runtimepath.SocketPath(); err != nil {
			return fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	pidPath := opts.PIDPath
	if pidPath == "" {
		if pidPath, err = runtimepath.PIDPath(); err != nil {
			return err
		}
	}
	if err := writePIDFile(pidPath); err != nil {
		return err
	}
	defer os.Remove(pidPath)

	server := ipc.NewServer(socketPath, tiler, d.reload, logger)
	server.SetConfigPath(configPath)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.WatchConfig {
		watcher, err := NewConfigWatcher(watchFiles(configPath, res.Files), DefaultDebounce, d.reloadFromWatcher, logger)
		if err != nil {
			return err
		}
		d.watcher = watcher
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Serve(gctx) })
	g.Go(func() error { return d.handleHangups(gctx) })
	if d.watcher != nil {
		g.Go(func() error { return d.watcher.Run(gctx) })
	}

	if cfg.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(gctx, cfg.MetricsAddr, m, logger) })
	}

	if loop, ok := backend.(eventLooper); ok {
		g.Go(func() error {
			<-gctx.Done()
			loop.Quit()
			return nil
		})
		logger.Debug("entering event loop")
		loop.EventLoop()
		cancel()
	}

	err = g.Wait()
	logger.Info("snaptile daemon stopped")
	return err
}

func (d *daemon) bindHotkeys(cfg *config.Config) error {
	h, err := newHotkeyBinder(d.backend, d.tiler, d.logger)
	if err != nil {
		d.logger.Info("global hotkeys disabled; bind `snaptile snap left|right` in the compositor", "reason", err)
		return nil
	}
	if err := h.RegisterAll(cfg); err != nil {
		return err
	}
	d.hotkeys = h
	d.logger.Info("hotkeys registered", "left", cfg.SnapLeftHotkey, "right", cfg.SnapRightHotkey, "place", len(cfg.PlaceHotkeys))
	return nil
}

// reload re-reads the config file and applies it to the running components.
// Nothing is applied unless the whole config takes: a file that fails to load
// or hotkeys that fail to grab leave the previous config in effect.
func (d *daemon) reload() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return "", err
	}
	prev, next := d.cfg, res.Config

	if d.hotkeys != nil && hotkeysChanged(prev, next) {
		if err := d.rebindHotkeys(prev, next); err != nil {
			return "", err
		}
	}

	d.cfg = next
	d.tiler.UpdateConfig(next)

	if d.watcher != nil {
		if err := d.watcher.SetFiles(watchFiles(d.configPath, res.Files)); err != nil {
			d.logger.Warn("failed to update watched config files", "error", err)
		}
	}
	if prev.MetricsAddr != next.MetricsAddr || prev.Backend != next.Backend ||
		prev.LogLevel != next.LogLevel || prev.LogFormat != next.LogFormat {
		d.logger.Warn("backend, logging and metrics settings take effect after a restart")
	}

	d.logger.Info("config reloaded", "config", d.configPath)
	return d.configPath, nil
}

// rebindHotkeys swaps the grabs from prev to next, restoring prev when next
// cannot be grabbed.
func (d *daemon) rebindHotkeys(prev, next *config.Config) error {
	d.hotkeys.UnregisterAll()
	err := d.hotkeys.RegisterAll(next)
	if err == nil {
		return nil
	}

	d.hotkeys.UnregisterAll()
	if rerr := d.hotkeys.RegisterAll(prev); rerr != nil {
		d.logger.Error("failed to restore previous hotkeys", "error", rerr)
	}
	return fmt.Errorf("re-register hotkeys: %w", err)
}

func (d *daemon) reloadFromWatcher() {
	if _, err := d.reload(); err != nil {
		d.logger.Error("config reload failed", "error", err)
	}
}

func (d *daemon) handleHangups(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			d.logger.Info("received SIGHUP, reloading config")
			d.reloadFromWatcher()
		}
	}
}

func hotkeysChanged(prev, next *config.Config) bool {
	return prev.SnapLeftHotkey != next.SnapLeftHotkey ||
		prev.SnapRightHotkey != next.SnapRightHotkey ||
		!reflect.DeepEqual(prev.PlaceHotkeys, next.PlaceHotkeys)
}

func watchFiles(configPath string, loaded []string) []string {
	return append([]string{configPath}, loaded...)
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	logger.Info("metrics server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}

// writePIDFile records the daemon pid, refusing to start when another live
// daemon already owns the file.
func writePIDFile(path string) error {
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(string(data)); err == nil && pid != os.Getpid() && processAlive(pid) {
			return fmt.Errorf("snaptile daemon already running (pid %d)", pid)
		}
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
