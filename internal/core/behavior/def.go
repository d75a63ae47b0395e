package behavior

import (
	"fmt"
	"time"
)

// Kind tags a node variant.
type Kind int

const (
	KindPriority Kind = iota
	KindSelector
	KindRandom
	KindInverter
	KindTimer
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindPriority:
		return "Priority"
	case KindSelector:
		return "Selector"
	case KindRandom:
		return "Random"
	case KindInverter:
		return "Inverter"
	case KindTimer:
		return "Timer"
	case KindLeaf:
		return "Leaf"
	default:
		return "Unknown"
	}
}

// NodeDef is the immutable template a tree is built from. Definitions may
// form a DAG: the same subtree definition can be referenced from several
// places or managers, and each build instantiates fresh nodes (and fresh
// actions) from it.
//
// Field applicability by kind:
//   - Prioritizer: required for Leaf, optional for composites (which
//     otherwise derive a default), ignored by decorators.
//   - Preemptive: composites only.
//   - Uniform, Background, Delay: Random and Timer respectively.
//   - Action: Leaf only.
type NodeDef struct {
	Name        string
	Kind        Kind
	Prioritizer Prioritizer
	Background  bool
	Preemptive  bool
	Uniform     bool
	Delay       time.Duration
	Children    []*NodeDef
	Action      *ActionDef
}

// Find returns the first definition named name in the DAG rooted at d,
// depth-first in child order, or nil if absent.
func (d *NodeDef) Find(name string) *NodeDef {
	if d == nil {
		return nil
	}
	if d.Name == name {
		return d
	}
	for _, child := range d.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Validate checks the definition's structure recursively: child arity per
// kind, a bound action and prioritizer on every leaf. It reports the first
// problem found; a definition that validates builds without error.
func (d *NodeDef) Validate() error {
	switch d.Kind {
	case KindPriority, KindSelector, KindRandom:
		if len(d.Children) == 0 {
			return fmt.Errorf("%w: composite node %q has no children", ErrInvalidDef, d.Name)
		}
	case KindInverter, KindTimer:
		if len(d.Children) != 1 {
			return fmt.Errorf("%w: decorator node %q has %d children, wants exactly 1",
				ErrInvalidDef, d.Name, len(d.Children))
		}
	case KindLeaf:
		if len(d.Children) != 0 {
			return fmt.Errorf("%w: leaf node %q has %d children", ErrInvalidDef, d.Name, len(d.Children))
		}
		if d.Action == nil {
			return fmt.Errorf("%w: leaf node %q has no action", ErrInvalidDef, d.Name)
		}
		if d.Prioritizer == nil {
			return fmt.Errorf("%w: leaf node %q has no prioritizer", ErrInvalidDef, d.Name)
		}
	default:
		return fmt.Errorf("%w: node %q has unknown kind %d", ErrInvalidDef, d.Name, d.Kind)
	}
	for _, child := range d.Children {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Build instantiates a tree from the definition. Construction is all or
// nothing: any structural problem aborts the whole build and no partial
// tree is returned.
func Build(def *NodeDef) (Node, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidDef)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return build(def), nil
}

func build(def *NodeDef) Node {
	switch def.Kind {
	case KindPriority:
		n := newPriorityNode(def.Name, def.Prioritizer, def.Preemptive)
		for _, child := range def.Children {
			n.addChild(build(child))
		}
		return n
	case KindSelector:
		n := newSelectorNode(def.Name, def.Prioritizer, def.Preemptive)
		for _, child := range def.Children {
			n.addChild(build(child))
		}
		return n
	case KindRandom:
		n := newRandomNode(def.Name, def.Prioritizer, def.Preemptive, def.Uniform)
		for _, child := range def.Children {
			n.addChild(build(child))
		}
		return n
	case KindInverter:
		n := newInverterNode(def.Name)
		n.addChild(build(def.Children[0]))
		return n
	case KindTimer:
		n := newTimerNode(def.Name, def.Background, def.Delay)
		n.addChild(build(def.Children[0]))
		return n
	default: // KindLeaf, already validated
		return newLeafNode(def.Name, def.Prioritizer, def.Action)
	}
}
