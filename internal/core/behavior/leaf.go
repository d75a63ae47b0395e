package behavior

import "fmt"

// LeafNode bridges the tree to exactly one Action. Its priority always
// comes from a user-supplied prioritizer; unlike composites there is no
// default rule, so the prioritizer is mandatory.
type LeafNode struct {
	nodeCore
	action *Action
}

func newLeafNode(name string, prioritizer Prioritizer, def *ActionDef) *LeafNode {
	n := &LeafNode{
		nodeCore: nodeCore{
			name:        name,
			kind:        KindLeaf,
			prioritizer: prioritizer,
			offset:      rootOffset,
			active:      noChild,
		},
		action: newAction(def),
	}
	n.self = n
	return n
}

// Action returns the leaf's owned action, for inspection.
func (n *LeafNode) Action() *Action { return n.action }

func (n *LeafNode) Query(t *Tick) {
	n.markQuery()
	n.setPriority(n.prioritizer())
}

func (n *LeafNode) Update(t *Tick) State {
	n.markUpdate()
	if n.state != StateRunning {
		return n.state
	}
	if n.action.State() == StateInactive {
		n.action.Start()
	}
	switch n.action.Update(t.Delta) {
	case StateRunning:
		n.state = StateRunning
	case StateFinished:
		n.state = StateFinished
	}
	return n.state
}

func (n *LeafNode) Pause() {
	if n.state != StateRunning {
		panic(fmt.Sprintf("behavior: cannot pause node %q in state %s", n.name, n.state))
	}
	if n.action.State() == StateRunning {
		n.action.Pause()
	}
	n.state = StatePaused
}

func (n *LeafNode) Resume() {
	if n.state != StatePaused {
		panic(fmt.Sprintf("behavior: cannot resume node %q in state %s", n.name, n.state))
	}
	n.state = StateRunning
	if n.action.State() == StatePaused {
		n.action.Resume()
	}
}

func (n *LeafNode) Preempt() {
	if n.action.State() == StateRunning {
		n.action.Terminate()
	}
	n.state = StateInactive
}

func (n *LeafNode) Reset() {
	n.priority = 0
	if n.action.State() == StateFinished {
		n.action.Reset()
	}
	n.state = StateInactive
}
