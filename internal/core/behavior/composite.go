package behavior

// childSelector is the variant hook shared by composite nodes: given the
// current tick it returns the index of the child that should be active, or
// noChild when no child qualifies.
type childSelector interface {
	selectChild(t *Tick) int
}

// compositeCore implements the selection machinery shared by Priority,
// Selector and Random nodes: query every child, then pick at most one
// active child according to the variant rule, honoring preemption.
type compositeCore struct {
	nodeCore
	preemptive bool
	selector   childSelector
}

func (c *compositeCore) Preemptive() bool { return c.preemptive }

// ActiveChild returns the currently selected child, or nil if none.
func (c *compositeCore) ActiveChild() Node {
	if c.active == noChild {
		return nil
	}
	return c.children[c.active]
}

func (c *compositeCore) Query(t *Tick) {
	c.markQuery()
	for _, child := range c.children {
		child.Query(t)
	}

	// A non-preemptive composite sticks with its active child until that
	// child finishes; a preemptive one reconsiders every tick.
	if c.active == noChild || c.preemptive || c.children[c.active].State() == StateFinished {
		if candidate := c.selector.selectChild(t); candidate != noChild {
			if c.active != noChild && candidate != c.active && c.children[c.active].State() == StateRunning {
				c.children[c.active].Preempt()
			}
			c.active = candidate
		}
	}

	switch {
	case c.prioritizer != nil:
		c.setPriority(c.prioritizer())
	case c.active != noChild:
		c.setPriority(c.children[c.active].Priority())
	default:
		c.setPriority(0)
	}
}

func (c *compositeCore) Update(t *Tick) State {
	c.markUpdate()
	if c.state != StateRunning {
		return c.state
	}
	if c.active == noChild {
		c.state = StateInactive
		return c.state
	}
	child := c.children[c.active]
	child.setState(StateRunning)
	c.state = child.Update(t)
	return c.state
}

// PriorityNode selects the child with the highest priority. Ties go to the
// earlier-listed child, giving a deterministic total order. When every
// child reports priority 0 it selects none.
type PriorityNode struct {
	compositeCore
}

func newPriorityNode(name string, prioritizer Prioritizer, preemptive bool) *PriorityNode {
	n := &PriorityNode{compositeCore{
		nodeCore: nodeCore{
			name:        name,
			kind:        KindPriority,
			prioritizer: prioritizer,
			offset:      rootOffset,
			active:      noChild,
		},
		preemptive: preemptive,
	}}
	n.self = n
	n.selector = n
	return n
}

func (n *PriorityNode) selectChild(*Tick) int {
	best := noChild
	bestPriority := 0.0
	for i, child := range n.children {
		if p := child.Priority(); p > bestPriority {
			best, bestPriority = i, p
		}
	}
	return best
}

// SelectorNode selects the first child, in list order, whose priority is
// nonzero, or none if every child reports zero.
type SelectorNode struct {
	compositeCore
}

func newSelectorNode(name string, prioritizer Prioritizer, preemptive bool) *SelectorNode {
	n := &SelectorNode{compositeCore{
		nodeCore: nodeCore{
			name:        name,
			kind:        KindSelector,
			prioritizer: prioritizer,
			offset:      rootOffset,
			active:      noChild,
		},
		preemptive: preemptive,
	}}
	n.self = n
	n.selector = n
	return n
}

func (n *SelectorNode) selectChild(*Tick) int {
	for i, child := range n.children {
		if child.Priority() > 0 {
			return i
		}
	}
	return noChild
}

// RandomNode selects a child from the manager's shared random source:
// uniformly when uniform is set, otherwise weighted by child priority.
// Under weighted selection a zero-priority child is never chosen, and an
// all-zero sum selects none. Its default priority is the arithmetic mean of
// the children's priorities.
type RandomNode struct {
	compositeCore
	uniform bool
}

func newRandomNode(name string, prioritizer Prioritizer, preemptive, uniform bool) *RandomNode {
	n := &RandomNode{
		compositeCore: compositeCore{
			nodeCore: nodeCore{
				name:        name,
				kind:        KindRandom,
				prioritizer: prioritizer,
				offset:      rootOffset,
				active:      noChild,
			},
			preemptive: preemptive,
		},
		uniform: uniform,
	}
	n.self = n
	n.selector = n
	return n
}

func (n *RandomNode) Uniform() bool { return n.uniform }

func (n *RandomNode) selectChild(t *Tick) int {
	if n.uniform {
		return t.Rand.Intn(len(n.children))
	}
	var sum float64
	for _, child := range n.children {
		sum += child.Priority()
	}
	if sum <= 0 {
		return noChild
	}
	r := t.Rand.Float64() * sum
	for i, child := range n.children {
		p := child.Priority()
		if r < p {
			return i
		}
		r -= p
	}
	return len(n.children) - 1
}

func (n *RandomNode) Query(t *Tick) {
	n.compositeCore.Query(t)
	if n.prioritizer == nil {
		var sum float64
		for _, child := range n.children {
			sum += child.Priority()
		}
		n.setPriority(sum / float64(len(n.children)))
	}
}
