package behavior

import "time"

// decoratorCore implements the execution plumbing shared by decorators:
// exactly one child, whose update result is mirrored. Decorators derive
// their priority from the child, so any user prioritizer on the definition
// is ignored.
type decoratorCore struct {
	nodeCore
}

func (d *decoratorCore) Update(t *Tick) State {
	d.markUpdate()
	if d.state != StateRunning {
		return d.state
	}
	child := d.children[0]
	d.active = 0
	child.setState(StateRunning)
	d.state = child.Update(t)
	return d.state
}

// InverterNode reports one minus its child's priority. Execution passes
// straight through to the child.
type InverterNode struct {
	decoratorCore
}

func newInverterNode(name string) *InverterNode {
	n := &InverterNode{decoratorCore{nodeCore{
		name:   name,
		kind:   KindInverter,
		offset: rootOffset,
		active: noChild,
	}}}
	n.self = n
	return n
}

func (n *InverterNode) Query(t *Tick) {
	n.markQuery()
	n.children[0].Query(t)
	n.setPriority(1 - n.children[0].Priority())
}

// TimerNode delays its child with one of two mutually exclusive semantics.
//
// Foreground (background == false): once selected, the node withholds the
// child's update until delay has accumulated across its own Update calls.
// Its priority is untouched during the delay, so a non-preemptive parent
// stays blocked on it.
//
// Background (background == true): after the child finishes (or the node is
// preempted), priority is forced to 0 for delay, tracked through Query so
// the cooldown elapses even while the node is not selected. Afterwards the
// priority reverts to the child's own value.
type TimerNode struct {
	decoratorCore
	background bool
	delay      time.Duration
	delaying   bool
	elapsed    time.Duration
}

func newTimerNode(name string, background bool, delay time.Duration) *TimerNode {
	n := &TimerNode{
		decoratorCore: decoratorCore{nodeCore{
			name:   name,
			kind:   KindTimer,
			offset: rootOffset,
			active: noChild,
		}},
		background: background,
		delay:      delay,
	}
	n.self = n
	return n
}

func (n *TimerNode) Background() bool     { return n.background }
func (n *TimerNode) Delay() time.Duration { return n.delay }

// setState starts the foreground delay whenever the node is newly selected
// for execution. Resuming from a pause assigns the state directly and so
// does not retrigger the delay.
func (n *TimerNode) setState(s State) {
	if s == n.state {
		return
	}
	if s == StateRunning && !n.background {
		n.delaying = true
	}
	n.state = s
}

func (n *TimerNode) Query(t *Tick) {
	n.markQuery()
	if n.background && n.delaying {
		n.setPriority(0)
		n.elapsed += t.Delta
		if n.elapsed >= n.delay {
			n.delaying = false
			n.elapsed = 0
		}
		return
	}
	n.children[0].Query(t)
	n.setPriority(n.children[0].Priority())
}

func (n *TimerNode) Update(t *Tick) State {
	if n.delaying && !n.background {
		n.elapsed += t.Delta
		if n.elapsed >= n.delay {
			n.delaying = false
			n.elapsed = 0
		} else {
			n.markUpdate()
			return n.state
		}
	}
	wasRunning := n.state == StateRunning
	state := n.decoratorCore.Update(t)
	if n.background && wasRunning && state == StateFinished {
		n.delaying = true
		n.elapsed = 0
	}
	return state
}

func (n *TimerNode) Preempt() {
	if n.background {
		n.delaying = true
		n.elapsed = 0
		n.priority = 0
	}
	n.decoratorCore.Preempt()
}

func (n *TimerNode) Reset() {
	n.delaying = false
	n.elapsed = 0
	n.nodeCore.Reset()
}
