package behavior

import (
	"fmt"
	"time"
)

// ActionDef is the immutable template for an action. Any of the callbacks
// may be nil, in which case that phase is a no-op. The same definition may
// be shared by any number of leaf definitions; each leaf instantiates its
// own Action from it.
type ActionDef struct {
	// Name identifies the action in logs and debug output.
	Name string
	// Start is invoked once when the action begins running.
	Start func()
	// Update advances the action by dt and reports whether it finished.
	// A nil Update never finishes, which is the expected shape for
	// idle/patrol style actions.
	Update func(dt time.Duration) bool
	// Terminate returns the actor to a stable state after the action is
	// interrupted before finishing.
	Terminate func()
}

// Action is one leaf's running instance of an ActionDef. Its operations are
// sequenced by the owning leaf node; invoking them from an incompatible
// state is a programming error and panics.
type Action struct {
	name      string
	state     State
	start     func()
	update    func(dt time.Duration) bool
	terminate func()
}

func newAction(def *ActionDef) *Action {
	return &Action{
		name:      def.Name,
		state:     StateInactive,
		start:     def.Start,
		update:    def.Update,
		terminate: def.Terminate,
	}
}

// Name returns the action's identifier.
func (a *Action) Name() string { return a.name }

// State returns the action's lifecycle state.
func (a *Action) State() State { return a.state }

// Start begins running the action, invoking the start callback if present.
func (a *Action) Start() {
	if a.state != StateInactive {
		panic(fmt.Sprintf("behavior: cannot start action %q in state %s", a.name, a.state))
	}
	a.state = StateRunning
	if a.start != nil {
		a.start()
	}
}

// Update advances the action by dt and returns the resulting state. It may
// only be called while the action is running.
func (a *Action) Update(dt time.Duration) State {
	if a.state != StateRunning {
		panic(fmt.Sprintf("behavior: cannot update action %q in state %s", a.name, a.state))
	}
	if a.update != nil && a.update(dt) {
		a.state = StateFinished
	}
	return a.state
}

// Terminate interrupts the running action, invoking the terminate callback
// so the actor can return to a stable state, and leaves the action inactive.
func (a *Action) Terminate() {
	if a.state != StateRunning {
		panic(fmt.Sprintf("behavior: cannot terminate action %q in state %s", a.name, a.state))
	}
	if a.terminate != nil {
		a.terminate()
	}
	a.state = StateInactive
}

// Pause suspends the running action. No callbacks fire and no updates are
// delivered until Resume.
func (a *Action) Pause() {
	if a.state != StateRunning {
		panic(fmt.Sprintf("behavior: cannot pause action %q in state %s", a.name, a.state))
	}
	a.state = StatePaused
}

// Resume continues a paused action.
func (a *Action) Resume() {
	if a.state != StatePaused {
		panic(fmt.Sprintf("behavior: cannot resume action %q in state %s", a.name, a.state))
	}
	a.state = StateRunning
}

// Reset returns a finished action to inactive so it can be started again.
func (a *Action) Reset() {
	if a.state != StateFinished {
		panic(fmt.Sprintf("behavior: cannot reset action %q in state %s", a.name, a.state))
	}
	a.state = StateInactive
}
