package behavior

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tree is one named, instantiated behavior tree owned by the manager.
type tree struct {
	id   uuid.UUID
	name string
	root Node
}

// Manager owns a collection of named behavior trees, ticks the running ones
// once per frame, and holds the single random source shared by every Random
// node so that a fixed seed yields a reproducible decision sequence.
//
// The manager is single-threaded by contract: all methods are expected to
// be called from the owning game loop.
type Manager struct {
	log     *zap.Logger
	rng     *rand.Rand
	trees   map[string]*tree
	order   []string // insertion order; map iteration would break RNG determinism
	metrics *Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithSeed fixes the random generator seed. Managers built with the same
// seed and fed the same priority inputs produce the same decisions.
func WithSeed(seed int64) Option {
	return func(m *Manager) { m.rng = rand.New(rand.NewSource(seed)) }
}

// WithSeedLabel derives the seed from a scenario label, so configs can name
// their determinism domain instead of carrying a magic number.
func WithSeedLabel(label string) Option {
	return WithSeed(int64(xxhash.Sum64String(label)))
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithMetrics attaches tick metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager creates a manager with no trees. Without WithSeed the random
// generator is seeded from the clock.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		log:   zap.NewNop(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		trees: make(map[string]*tree),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddTree builds the definition and registers the result under name. It
// fails if the name is taken or the definition is structurally invalid, in
// which case no tree is registered and any pre-existing tree is untouched.
func (m *Manager) AddTree(name string, def *NodeDef) error {
	if _, exists := m.trees[name]; exists {
		return fmt.Errorf("add tree %q: %w", name, ErrTreeExists)
	}
	root, err := Build(def)
	if err != nil {
		return fmt.Errorf("add tree %q: %w", name, err)
	}
	t := &tree{id: uuid.New(), name: name, root: root}
	m.trees[name] = t
	m.order = append(m.order, name)
	m.log.Debug("tree added",
		zap.String("tree", name),
		zap.String("id", t.id.String()),
		zap.String("root", root.Name()))
	return nil
}

// ContainsTree reports whether a tree is registered under name.
func (m *Manager) ContainsTree(name string) bool {
	_, exists := m.trees[name]
	return exists
}

// Tree returns non-owning access to the named tree's root for inspection,
// or nil if absent.
func (m *Manager) Tree(name string) Node {
	if t, exists := m.trees[name]; exists {
		return t.root
	}
	return nil
}

// TreeID returns the instance identity assigned to the named tree when it
// was built.
func (m *Manager) TreeID(name string) (uuid.UUID, error) {
	t, exists := m.trees[name]
	if !exists {
		return uuid.Nil, fmt.Errorf("tree %q: %w", name, ErrTreeNotFound)
	}
	return t.id, nil
}

// TreeState returns the named tree's lifecycle state.
func (m *Manager) TreeState(name string) (State, error) {
	t, exists := m.trees[name]
	if !exists {
		return StateInactive, fmt.Errorf("tree %q: %w", name, ErrTreeNotFound)
	}
	return t.root.State(), nil
}

// StartTree begins executing a registered tree. Adding a tree is not enough
// for the manager to tick it; it must be started as well.
func (m *Manager) StartTree(name string) error {
	t, exists := m.trees[name]
	if !exists {
		return fmt.Errorf("start tree %q: %w", name, ErrTreeNotFound)
	}
	if t.root.State() != StateInactive {
		return fmt.Errorf("start tree %q in state %s: %w", name, t.root.State(), ErrTreeNotInactive)
	}
	t.root.Start(&Tick{Rand: m.rng})
	m.log.Debug("tree started", zap.String("tree", name))
	return nil
}

// PauseTree suspends a running tree; it is skipped entirely by Update until
// resumed, and no delta time accrues inside it meanwhile.
func (m *Manager) PauseTree(name string) error {
	t, exists := m.trees[name]
	if !exists {
		return fmt.Errorf("pause tree %q: %w", name, ErrTreeNotFound)
	}
	if t.root.State() != StateRunning {
		return fmt.Errorf("pause tree %q in state %s: %w", name, t.root.State(), ErrTreeNotRunning)
	}
	t.root.Pause()
	m.log.Debug("tree paused", zap.String("tree", name))
	return nil
}

// ResumeTree continues a paused tree with its active child and priorities
// exactly as they were when paused.
func (m *Manager) ResumeTree(name string) error {
	t, exists := m.trees[name]
	if !exists {
		return fmt.Errorf("resume tree %q: %w", name, ErrTreeNotFound)
	}
	if t.root.State() != StatePaused {
		return fmt.Errorf("resume tree %q in state %s: %w", name, t.root.State(), ErrTreeNotPaused)
	}
	t.root.Resume()
	m.log.Debug("tree resumed", zap.String("tree", name))
	return nil
}

// ResetTree returns a finished tree to its initial state. It does not
// restart the tree; StartTree must be called separately.
func (m *Manager) ResetTree(name string) error {
	t, exists := m.trees[name]
	if !exists {
		return fmt.Errorf("reset tree %q: %w", name, ErrTreeNotFound)
	}
	if t.root.State() != StateFinished {
		return fmt.Errorf("reset tree %q in state %s: %w", name, t.root.State(), ErrTreeNotFinished)
	}
	t.root.Reset()
	m.log.Debug("tree reset", zap.String("tree", name))
	return nil
}

// RemoveTree erases a tree, destroying its nodes and actions. A running
// tree cannot be removed; preempt or pause it first.
func (m *Manager) RemoveTree(name string) error {
	t, exists := m.trees[name]
	if !exists {
		return fmt.Errorf("remove tree %q: %w", name, ErrTreeNotFound)
	}
	if t.root.State() == StateRunning {
		return fmt.Errorf("remove tree %q: %w", name, ErrTreeRunning)
	}
	delete(m.trees, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.log.Debug("tree removed", zap.String("tree", name))
	return nil
}

// Update ticks every running tree once: a full query pass (priorities and
// tentative selections) immediately followed by an update pass (execution
// of the selected path). Paused and inactive trees are skipped entirely. A
// panic from one tree's callbacks is contained and logged; the remaining
// trees still tick.
func (m *Manager) Update(dt time.Duration) {
	running := 0
	for _, name := range m.order {
		t := m.trees[name]
		if t.root.State() != StateRunning {
			continue
		}
		running++
		m.tickTree(t, dt)
	}
	m.metrics.observeRunning(running)
}

func (m *Manager) tickTree(t *tree, dt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			m.metrics.observeFailure(t.name)
			m.log.Error("tree tick failed",
				zap.String("tree", t.name),
				zap.String("id", t.id.String()),
				zap.Any("panic", r))
		}
	}()
	start := time.Now()
	tick := &Tick{Delta: dt, Rand: m.rng}
	t.root.Query(tick)
	t.root.Update(tick)
	m.metrics.observeTick(t.name, time.Since(start))
}
