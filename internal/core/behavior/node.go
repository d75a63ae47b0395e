package behavior

import (
	"fmt"
	"math/rand"
	"time"
)

// State is the lifecycle state shared by nodes and actions.
type State int32

const (
	StateInactive State = iota
	StateRunning
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "Inactive"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Prioritizer reports how relevant a node is this tick, in [0,1].
// Higher values win selection.
type Prioritizer func() float64

// Tick carries the per-frame inputs shared by every node during one
// query/update pass. The manager constructs one Tick per frame and hands
// its random source to Random nodes through it, so nodes never hold a
// reference to the generator themselves.
type Tick struct {
	Delta time.Duration
	Rand  *rand.Rand
}

// rootOffset marks a node that has no parent.
const rootOffset = -1

// noChild marks a composite or decorator with no active child.
const noChild = -1

// Node is a single element of a behavior tree. Each tick the manager calls
// Query on the root (recursing into the whole tree, recomputing priorities
// and tentative selections without side effects on actions) and then Update
// (executing only the active path).
//
// Lifecycle operations are driven by the node's parent, or by the manager
// for the root; calling them out of sequence is a programming error and
// panics.
type Node interface {
	// Name returns the node's identifier within its tree.
	Name() string
	// Kind returns the node's variant tag.
	Kind() Kind
	// State returns the node's lifecycle state.
	State() State
	// Priority returns the node's priority as of the last Query, in [0,1].
	Priority() float64
	// Children returns read-only access to the node's children.
	Children() []Node
	// Child returns the child at the given list position.
	Child(pos int) Node

	// Query recomputes this node's priority and, for composites and
	// decorators, decides which child would run next. It recurses into
	// every descendant regardless of selection.
	Query(t *Tick)
	// Update executes the previously selected child (or the leaf's action)
	// and returns the resulting state. It is only invoked along the active
	// path.
	Update(t *Tick) State

	// Start moves the node from Inactive to Running, performing an initial
	// zero-delta query/update pass.
	Start(t *Tick)
	// Pause suspends the running node and its active descendants.
	Pause()
	// Resume continues a paused node and its paused descendants.
	Resume()
	// Reset returns a finished node, and everything below it, to Inactive.
	Reset()
	// Preempt forces a node back to Inactive mid-run, terminating any
	// in-flight action so the actor returns to a stable state.
	Preempt()

	setState(s State)
	setParent(parent Node, offset int)
}

// nodeCore holds the state machine fields shared by every node variant.
// Variants embed it and provide Query, Update and (for composites) child
// selection on top.
type nodeCore struct {
	name        string
	kind        Kind
	state       State
	priority    float64
	prioritizer Prioritizer
	children    []Node
	parent      Node
	offset      int // position in the parent's child list, rootOffset for the root
	active      int // index of the active child, noChild for none

	// self is the variant embedding this core, so shared operations can
	// dispatch back into variant overrides.
	self Node

	// pendingQuery guards the one-query-per-update contract at the root.
	pendingQuery bool
}

func (n *nodeCore) Name() string      { return n.name }
func (n *nodeCore) Kind() Kind        { return n.kind }
func (n *nodeCore) State() State      { return n.state }
func (n *nodeCore) Priority() float64 { return n.priority }

func (n *nodeCore) Children() []Node {
	out := make([]Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *nodeCore) Child(pos int) Node {
	if pos < 0 || pos >= len(n.children) {
		panic(fmt.Sprintf("behavior: child position %d out of range for node %q", pos, n.name))
	}
	return n.children[pos]
}

func (n *nodeCore) setState(s State) { n.state = s }

func (n *nodeCore) setParent(parent Node, offset int) {
	n.parent = parent
	n.offset = offset
}

// setPriority clamps out-of-range values rather than propagating them, so a
// misbehaving prioritizer cannot corrupt sibling comparisons.
func (n *nodeCore) setPriority(p float64) {
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	n.priority = p
}

// markQuery enforces, at the root only, that every Query is followed by an
// Update before the next Query. Non-root nodes are queried every tick
// whether or not they are updated, so the guard does not apply to them.
func (n *nodeCore) markQuery() {
	if n.offset == rootOffset && n.pendingQuery {
		panic(fmt.Sprintf("behavior: node %q queried twice without an update", n.name))
	}
	n.pendingQuery = true
}

func (n *nodeCore) markUpdate() { n.pendingQuery = false }

// Start performs the initial query/update pass that primes priorities
// before the first frame.
func (n *nodeCore) Start(t *Tick) {
	if n.state != StateInactive {
		panic(fmt.Sprintf("behavior: cannot start node %q in state %s", n.name, n.state))
	}
	n.self.Query(t)
	n.self.setState(StateRunning)
	n.self.Update(t)
}

func (n *nodeCore) Pause() {
	if n.state != StateRunning {
		panic(fmt.Sprintf("behavior: cannot pause node %q in state %s", n.name, n.state))
	}
	if n.active != noChild {
		n.children[n.active].Pause()
	}
	n.state = StatePaused
}

func (n *nodeCore) Resume() {
	if n.state != StatePaused {
		panic(fmt.Sprintf("behavior: cannot resume node %q in state %s", n.name, n.state))
	}
	n.state = StateRunning
	if n.active != noChild {
		n.children[n.active].Resume()
	}
}

func (n *nodeCore) Reset() {
	n.state = StateInactive
	n.priority = 0
	n.active = noChild
	for _, child := range n.children {
		child.Reset()
	}
}

func (n *nodeCore) Preempt() {
	if n.active != noChild {
		n.children[n.active].Preempt()
		n.active = noChild
	}
	n.state = StateInactive
}

// addChild appends a child, recording its offset for tie-breaking and
// upward navigation. Called only during tree construction.
func (n *nodeCore) addChild(child Node) {
	child.setParent(n.self, len(n.children))
	n.children = append(n.children, child)
}

// Find returns the first node named name in the tree rooted at n, walking
// depth-first in child-list order, or nil if absent.
func Find(n Node, name string) Node {
	if n == nil {
		return nil
	}
	if n.Name() == name {
		return n
	}
	for _, child := range n.Children() {
		if found := Find(child, name); found != nil {
			return found
		}
	}
	return nil
}
