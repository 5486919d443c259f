package layout

import "sync"

// Plan is the outcome of planning a snap before it is applied to a window.
type Plan struct {
	Identity      WindowIdentity
	Direction     Direction // unset for placements
	Placement     bool
	Observed      Position
	Remembered    Position
	HasRemembered bool
	Next          Position
	Rect          Rect
}

// Engine owns the cycle state: the last position assigned to each window
// identity. The state is only a hint; the freshly observed classification
// always decides the current position.
//
// Identities include the window origin observed before the move, and Commit
// files the target under that key. Snaps that move the origin (the right
// cycle, Center) therefore leave an entry the next press will not look up.
// That is expected: cycling never depends on Remembered.
type Engine struct {
	mu    sync.Mutex
	state map[WindowIdentity]Position
}

// NewEngine returns an engine with an empty cycle state.
func NewEngine() *Engine {
	return &Engine{state: make(map[WindowIdentity]Position)}
}

// Plan classifies windowRect, advances the cycle for dir and computes the
// target rectangle. The cycle state is read but not modified.
func (e *Engine) Plan(dir Direction, windowRect, screen Rect, id WindowIdentity) Plan {
	observed := Classify(windowRect, screen)
	next := NextPosition(dir, observed)

	plan := Plan{
		Identity:  id,
		Direction: dir,
		Observed:  observed,
		Next:      next,
		Rect:      LayoutRect(next, screen),
	}
	plan.Remembered, plan.HasRemembered = e.Remembered(id)
	return plan
}

// PlanPlacement targets p directly instead of advancing a cycle. The next
// press of either hotkey continues from whatever the window classifies as.
func (e *Engine) PlanPlacement(p Position, windowRect, screen Rect, id WindowIdentity) Plan {
	if !p.Valid() {
		p = Fullscreen
	}
	plan := Plan{
		Identity:  id,
		Placement: true,
		Observed:  Classify(windowRect, screen),
		Next:      p,
		Rect:      LayoutRect(p, screen),
	}
	plan.Remembered, plan.HasRemembered = e.Remembered(id)
	return plan
}

// Commit records the plan's target position for its identity.
func (e *Engine) Commit(plan Plan) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state[plan.Identity] = plan.Next
}

// Resize plans and commits in one step and returns the new position and
// rectangle. It never fails: every rectangle classifies to some position and
// every position has a layout.
func (e *Engine) Resize(dir Direction, windowRect, screen Rect, id WindowIdentity) (Position, Rect) {
	plan := e.Plan(dir, windowRect, screen, id)
	e.Commit(plan)
	return plan.Next, plan.Rect
}

// Remembered returns the last position committed for id.
func (e *Engine) Remembered(id WindowIdentity) (Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.state[id]
	return p, ok
}

// Forget drops the remembered position for id.
func (e *Engine) Forget(id WindowIdentity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.state, id)
}

// Len returns the number of tracked identities.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.state)
}
