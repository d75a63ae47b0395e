package behavior

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityNodeSelectsHighest(t *testing.T) {
	p1, p2, p3 := 0.9, 0.5, 0.2
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindPriority,
		Children: []*NodeDef{
			leafDef("first", &p1, (&probe{}).def("first")),
			leafDef("second", &p2, (&probe{}).def("second")),
			leafDef("third", &p3, (&probe{}).def("third")),
		},
	})
	require.NoError(t, err)

	node := root.(*PriorityNode)
	tk := testTick(0)
	node.Query(tk)
	assert.Equal(t, "first", node.ActiveChild().Name())
	// Default priority mirrors the chosen child.
	assert.Equal(t, p1, node.Priority())
}

func TestPriorityNodeTieGoesToEarlierChild(t *testing.T) {
	p1, p2 := 0.7, 0.7
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindPriority,
		Children: []*NodeDef{
			leafDef("left", &p1, (&probe{}).def("left")),
			leafDef("right", &p2, (&probe{}).def("right")),
		},
	})
	require.NoError(t, err)

	node := root.(*PriorityNode)
	node.Query(testTick(0))
	assert.Equal(t, "left", node.ActiveChild().Name())
}

func TestPriorityNodeAllZeroSelectsNone(t *testing.T) {
	p1, p2 := 0.0, 0.0
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindPriority,
		Children: []*NodeDef{
			leafDef("a", &p1, (&probe{}).def("a")),
			leafDef("b", &p2, (&probe{}).def("b")),
		},
	})
	require.NoError(t, err)

	node := root.(*PriorityNode)
	tk := testTick(0)
	node.Query(tk)
	assert.Nil(t, node.ActiveChild())
	node.setState(StateRunning)
	assert.Equal(t, StateInactive, node.Update(tk))
}

func TestSelectorNodePicksFirstNonzero(t *testing.T) {
	p1, p2, p3, p4 := 0.0, 0.0, 0.5, 0.8
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindSelector,
		Children: []*NodeDef{
			leafDef("a", &p1, (&probe{}).def("a")),
			leafDef("b", &p2, (&probe{}).def("b")),
			leafDef("c", &p3, (&probe{}).def("c")),
			leafDef("d", &p4, (&probe{}).def("d")),
		},
	})
	require.NoError(t, err)

	node := root.(*SelectorNode)
	node.Query(testTick(0))
	require.NotNil(t, node.ActiveChild())
	assert.Equal(t, "c", node.ActiveChild().Name())
	assert.Equal(t, p3, node.Priority())
}

func TestCompositeMutualExclusion(t *testing.T) {
	// Drive a preemptive priority node through several selection flips and
	// check at most one child runs at any instant.
	p1, p2 := 0.9, 0.1
	a, b := &probe{}, &probe{}
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindPriority, Preemptive: true,
		Children: []*NodeDef{
			leafDef("a", &p1, a.def("a")),
			leafDef("b", &p2, b.def("b")),
		},
	})
	require.NoError(t, err)

	root.Start(testTick(0))
	for i := 0; i < 20; i++ {
		p1, p2 = p2, p1 // flip dominance every tick
		tick(root, 50*time.Millisecond)

		running := 0
		for _, child := range root.Children() {
			if child.State() == StateRunning {
				running++
			}
		}
		assert.LessOrEqual(t, running, 1)
	}
	// Both actions got their turn, and each preemption terminated cleanly.
	assert.Positive(t, a.terminated)
	assert.Positive(t, b.terminated)
}

func TestPreemptionTerminatesDisplacedAction(t *testing.T) {
	idlePrio, alertPrio := 0.1, 0.0
	idle, alert := &probe{}, &probe{}
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindPriority, Preemptive: true,
		Children: []*NodeDef{
			leafDef("idle", &idlePrio, idle.def("idle")),
			leafDef("alert", &alertPrio, alert.def("alert")),
		},
	})
	require.NoError(t, err)

	root.Start(testTick(0))
	tick(root, 100*time.Millisecond)
	require.Equal(t, 1, idle.started)
	require.Zero(t, alert.started)

	alertPrio = 0.9
	tick(root, 100*time.Millisecond)
	assert.Equal(t, 1, idle.terminated)
	assert.Equal(t, 1, alert.started)
	assert.Equal(t, StateInactive, Find(root, "idle").State())
	assert.Equal(t, StateRunning, Find(root, "alert").State())
}

func TestNonPreemptiveKeepsRunningChild(t *testing.T) {
	idlePrio, alertPrio := 0.1, 0.0
	idle, alert := &probe{}, &probe{}
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindPriority,
		Children: []*NodeDef{
			leafDef("idle", &idlePrio, idle.def("idle")),
			leafDef("alert", &alertPrio, alert.def("alert")),
		},
	})
	require.NoError(t, err)

	root.Start(testTick(0))
	alertPrio = 0.9
	for i := 0; i < 5; i++ {
		tick(root, 100*time.Millisecond)
	}
	assert.Zero(t, alert.started)
	assert.Zero(t, idle.terminated)
	assert.Equal(t, StateRunning, Find(root, "idle").State())
}

func TestCompositeFinishesWithChild(t *testing.T) {
	prio := 0.8
	act := &probe{finishAfter: 3}
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindSelector,
		Children: []*NodeDef{leafDef("task", &prio, act.def("task"))},
	})
	require.NoError(t, err)

	root.Start(testTick(0))
	assert.Equal(t, StateRunning, root.State())
	tick(root, time.Second)
	tick(root, time.Second)
	assert.Equal(t, StateFinished, root.State())
	assert.Equal(t, StateFinished, Find(root, "task").State())

	root.Reset()
	assert.Equal(t, StateInactive, root.State())
	assert.Equal(t, StateInactive, Find(root, "task").State())
	assert.Equal(t, StateInactive, Find(root, "task").(*LeafNode).Action().State())
}

func buildRandomTree(t *testing.T, uniform bool, priorities ...*float64) *RandomNode {
	t.Helper()
	children := make([]*NodeDef, len(priorities))
	names := []string{"a", "b", "c", "d", "e"}
	for i, p := range priorities {
		children[i] = leafDef(names[i], p, (&probe{}).def(names[i]))
	}
	root, err := Build(&NodeDef{
		Name: "root", Kind: KindRandom, Uniform: uniform, Preemptive: true,
		Children: children,
	})
	require.NoError(t, err)
	return root.(*RandomNode)
}

func TestRandomNodeUniformIsDeterministicPerSeed(t *testing.T) {
	draw := func(seed int64) []int {
		p1, p2, p3 := 0.3, 0.3, 0.3
		node := buildRandomTree(t, true, &p1, &p2, &p3)
		node.Query(testTick(0)) // prime child priorities
		rng := rand.New(rand.NewSource(seed))
		out := make([]int, 64)
		for i := range out {
			out[i] = node.selectChild(&Tick{Rand: rng})
		}
		return out
	}

	first := draw(42)
	second := draw(42)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, draw(7))
}

func TestRandomNodeWeightedFrequencies(t *testing.T) {
	p1, p2, p3 := 0.0, 0.25, 0.75 // weights 0 : 1 : 3
	node := buildRandomTree(t, false, &p1, &p2, &p3)
	node.Query(testTick(0))

	rng := rand.New(rand.NewSource(42))
	counts := make([]int, 3)
	const draws = 8000
	for i := 0; i < draws; i++ {
		idx := node.selectChild(&Tick{Rand: rng})
		require.GreaterOrEqual(t, idx, 1, "zero-priority child must never be selected")
		counts[idx]++
	}
	assert.Zero(t, counts[0])

	ratio := float64(counts[2]) / float64(counts[1])
	assert.InDelta(t, 3.0, ratio, 0.4)
}

func TestRandomNodeWeightedAllZeroSelectsNone(t *testing.T) {
	p1, p2 := 0.0, 0.0
	node := buildRandomTree(t, false, &p1, &p2)
	tk := testTick(0)
	node.Query(tk)
	assert.Nil(t, node.ActiveChild())
	node.setState(StateRunning)
	assert.Equal(t, StateInactive, node.Update(tk))
}

func TestRandomNodeDefaultPriorityIsMean(t *testing.T) {
	p1, p2, p3 := 0.2, 0.4, 0.9
	node := buildRandomTree(t, true, &p1, &p2, &p3)
	node.Query(testTick(0))
	assert.InDelta(t, 0.5, node.Priority(), 1e-9)
}
