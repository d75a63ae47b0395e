// Package behavior implements a priority-driven behavior tree engine for
// real-time agent decision making.
//
// Trees are described by immutable NodeDef templates and instantiated by a
// Manager, which ticks every running tree once per frame: a query pass
// recomputes priorities over the whole tree, then an update pass executes
// the single selected path down to a leaf's action. Composite nodes pick
// the path (by priority, list order, or a shared seeded random source),
// decorators transform a child's priority or timing, and preemption lets a
// higher-priority sibling interrupt a running subtree while its action is
// terminated cleanly.
package behavior
