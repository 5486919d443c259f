package tiling

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/snaptile/internal/config"
	"github.com/1broseidon/snaptile/internal/layout"
	"github.com/1broseidon/snaptile/internal/metrics"
	"github.com/1broseidon/snaptile/internal/platform"
)

// Actions reported in SnapResult.Action.
const (
	ActionLeft  = "left"
	ActionRight = "right"
	ActionPlace = "place"
	ActionQuery = "query"
)

// SnapResult describes one snap, placement or query of the focused window.
type SnapResult struct {
	Action     string                `json:"action"`
	WindowID   platform.WindowID     `json:"window_id"`
	Title      string                `json:"title"`
	Identity   layout.WindowIdentity `json:"identity"`
	Observed   layout.Position       `json:"observed"`
	Remembered *layout.Position      `json:"remembered,omitempty"`
	Next       layout.Position       `json:"next"`
	Rect       platform.Rect         `json:"rect"`
	Screen     platform.Rect         `json:"screen"`
	At         time.Time             `json:"at"`
}

// Stats summarizes tiler activity since startup.
type Stats struct {
	Backend        string      `json:"backend"`
	TrackedWindows int         `json:"tracked_windows"`
	Snaps          int         `json:"snaps"`
	Failures       int         `json:"failures"`
	LastError      string      `json:"last_error,omitempty"`
	Last           *SnapResult `json:"last,omitempty"`
}

// Tiler moves the focused window through the layout positions.
type Tiler struct {
	mu      sync.Mutex
	backend platform.Backend
	engine  *layout.Engine
	config  *config.Config
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	snaps     int
	failures  int
	lastError string
	last      *SnapResult
}

// Option configures a Tiler.
type Option func(*Tiler)

// WithMetrics records snaps on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tiler) { t.metrics = m }
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tiler) { t.logger = l }
}

// WithEngine shares an existing cycle engine.
func WithEngine(e *layout.Engine) Option {
	return func(t *Tiler) { t.engine = e }
}

// NewTiler creates a new tiler instance
func NewTiler(backend platform.Backend, cfg *config.Config, opts ...Option) *Tiler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	t := &Tiler{
		backend: backend,
		config:  cfg,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.engine == nil {
		t.engine = layout.NewEngine()
	}
	return t
}

// Snap advances the focused window one step through dir's cycle.
func (t *Tiler) Snap(dir layout.Direction) (SnapResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.now()
	win, frame, err := t.observeLocked()
	if err != nil {
		return t.failLocked(dir.String(), err)
	}

	rect, screen := toLayout(win.Bounds), toLayout(frame)
	plan := t.engine.Plan(dir, rect, screen, layout.Identity(win.Title, rect))
	return t.applyLocked(dir.String(), win, frame, plan, start)
}

// Place moves the focused window straight to p.
func (t *Tiler) Place(p layout.Position) (SnapResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !p.Valid() {
		return t.failLocked(ActionPlace, fmt.Errorf("invalid position %d", int(p)))
	}

	start := t.now()
	win, frame, err := t.observeLocked()
	if err != nil {
		return t.failLocked(ActionPlace, err)
	}

	rect, screen := toLayout(win.Bounds), toLayout(frame)
	plan := t.engine.PlanPlacement(p, rect, screen, layout.Identity(win.Title, rect))
	return t.applyLocked(ActionPlace, win, frame, plan, start)
}

// Query classifies the focused window without moving it.
func (t *Tiler) Query() (SnapResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	win, frame, err := t.observeLocked()
	if err != nil {
		return SnapResult{}, err
	}

	rect := toLayout(win.Bounds)
	id := layout.Identity(win.Title, rect)
	observed := layout.Classify(rect, toLayout(frame))
	res := SnapResult{
		Action:   ActionQuery,
		WindowID: win.ID,
		Title:    win.Title,
		Identity: id,
		Observed: observed,
		Next:     observed,
		Rect:     win.Bounds,
		Screen:   frame,
		At:       t.now(),
	}
	if remembered, ok := t.engine.Remembered(id); ok {
		res.Remembered = &remembered
	}
	return res, nil
}

// Stats returns a snapshot of tiler activity.
func (t *Tiler) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		TrackedWindows: t.engine.Len(),
		Snaps:          t.snaps,
		Failures:       t.failures,
		LastError:      t.lastError,
	}
	if t.backend != nil {
		s.Backend = t.backend.Name()
	}
	if t.last != nil {
		last := *t.last
		s.Last = &last
	}
	return s
}

// UpdateConfig updates the tiler's configuration
func (t *Tiler) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.config = cfg
}

// observeLocked reads the focused window and the padded screen frame.
func (t *Tiler) observeLocked() (platform.Window, platform.Rect, error) {
	if t.backend == nil {
		return platform.Window{}, platform.Rect{}, errors.New("no window system backend")
	}

	win, err := t.backend.FocusedWindow()
	if err != nil {
		return platform.Window{}, platform.Rect{}, fmt.Errorf("focused window: %w", err)
	}

	screen, err := t.backend.ActiveScreen()
	if err != nil {
		return platform.Window{}, platform.Rect{}, fmt.Errorf("active screen: %w", err)
	}

	frame := screen.Frame(platform.FrameKind(t.config.ScreenFrame))
	if frame.Width <= 0 || frame.Height <= 0 {
		return platform.Window{}, platform.Rect{}, fmt.Errorf("%w: %s frame of %s is empty", platform.ErrNoScreen, t.config.ScreenFrame, screen.Name)
	}
	frame, err = ApplyPadding(frame, t.config.ScreenPadding)
	if err != nil {
		return platform.Window{}, platform.Rect{}, err
	}

	return win, frame, nil
}

func (t *Tiler) applyLocked(action string, win platform.Window, frame platform.Rect, plan layout.Plan, start time.Time) (SnapResult, error) {
	if plan.HasRemembered && plan.Remembered != plan.Observed {
		t.logger.Debug("remembered position differs from observed",
			"identity", plan.Identity,
			"remembered", plan.Remembered,
			"observed", plan.Observed,
		)
	}

	target := ToPixels(plan.Rect)
	if err := t.backend.MoveResize(win.ID, target); err != nil {
		return t.failLocked(action, fmt.Errorf("move window: %w", err))
	}
	t.engine.Commit(plan)

	res := SnapResult{
		Action:   action,
		WindowID: win.ID,
		Title:    win.Title,
		Identity: plan.Identity,
		Observed: plan.Observed,
		Next:     plan.Next,
		Rect:     target,
		Screen:   frame,
		At:       t.now(),
	}
	if plan.HasRemembered {
		remembered := plan.Remembered
		res.Remembered = &remembered
	}

	t.snaps++
	t.last = &res
	t.metrics.ObserveSnap(action, plan.Next.String(), t.now().Sub(start), t.engine.Len())
	t.logger.Info("snapped window",
		"action", action,
		"title", win.Title,
		"from", plan.Observed,
		"to", plan.Next,
		"rect", target,
	)
	return res, nil
}

func (t *Tiler) failLocked(action string, err error) (SnapResult, error) {
	t.failures++
	t.lastError = err.Error()
	t.metrics.ObserveFailure(err)

	if errors.Is(err, platform.ErrNoFocusedWindow) {
		t.logger.Debug("nothing to snap", "action", action, "error", err)
	} else {
		t.logger.Warn("snap aborted", "action", action, "error", err)
	}
	return SnapResult{}, err
}
