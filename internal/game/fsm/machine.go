// Package fsm provides a generic state machine whose states are long-lived
// singletons, and an observer registry that only accepts subscriptions made
// from inside a state's Enter or Exit.
package fsm

// State is one node of a Machine. Enter returns a value the driver acts on.
type State[R any] interface {
	Enter() R
	Exit()
}

// Lifecycle reports which owner, if any, is inside its Enter or Exit right now,
// and lets observers learn when an owner has finished exiting.
type Lifecycle[K comparable] interface {
	Active(owner K) bool
	OnExit(fn func(owner K))
}

// Machine holds the current state and performs Exit → swap → Enter transitions.
// States are created lazily from the factory, once per key.
// It is not safe for concurrent use.
type Machine[K comparable, R any] struct {
	factory func(K) State[R]
	states  map[K]State[R]

	current    K
	hasCurrent bool

	transitioning bool
	scope         K
	inScope       bool

	exitHooks       []func(K)
	transitionHooks []func(from, to K)
}

// NewMachine creates a Machine with no current state.
//
// Precondition: factory must return a non-nil State for every key it is asked for.
func NewMachine[K comparable, R any](factory func(K) State[R]) *Machine[K, R] {
	return &Machine[K, R]{factory: factory, states: make(map[K]State[R])}
}

// Current returns the active key; ok is false before the first transition or after Stop.
func (m *Machine[K, R]) Current() (key K, ok bool) {
	return m.current, m.hasCurrent
}

// Transitioning reports whether a ChangeTo or Stop is in progress.
func (m *Machine[K, R]) Transitioning() bool { return m.transitioning }

// State returns the singleton for key, creating it on first use.
func (m *Machine[K, R]) State(key K) State[R] {
	st, ok := m.states[key]
	if !ok {
		st = m.factory(key)
		m.states[key] = st
	}
	return st
}

// Active reports whether owner's Enter or Exit is executing.
func (m *Machine[K, R]) Active(owner K) bool {
	return m.inScope && m.scope == owner
}

// OnExit registers fn to run after each state's Exit returns.
func (m *Machine[K, R]) OnExit(fn func(owner K)) {
	m.exitHooks = append(m.exitHooks, fn)
}

// OnTransition registers fn to run after each completed transition.
// from is the zero key for the first transition.
func (m *Machine[K, R]) OnTransition(fn func(from, to K)) {
	m.transitionHooks = append(m.transitionHooks, fn)
}

// ChangeTo exits the current state and enters next, returning what Enter returned.
//
// Postcondition: returns ok == false without side effects when next is already
// current or another transition is in progress.
func (m *Machine[K, R]) ChangeTo(next K) (result R, ok bool) {
	if m.transitioning || (m.hasCurrent && m.current == next) {
		return result, false
	}
	m.transitioning = true
	defer func() { m.transitioning = false }()

	from := m.current
	if m.hasCurrent {
		m.exit(m.current)
	}
	st := m.State(next)
	m.current, m.hasCurrent = next, true

	m.open(next)
	result = st.Enter()
	m.close()

	for _, fn := range m.transitionHooks {
		fn(from, next)
	}
	return result, true
}

// Stop exits the current state and leaves the machine with none.
// It is a no-op when there is no current state or a transition is in progress.
func (m *Machine[K, R]) Stop() {
	if m.transitioning || !m.hasCurrent {
		return
	}
	m.transitioning = true
	defer func() { m.transitioning = false }()
	m.exit(m.current)
	var zero K
	m.current, m.hasCurrent = zero, false
}

func (m *Machine[K, R]) exit(key K) {
	m.open(key)
	m.State(key).Exit()
	m.close()
	for _, fn := range m.exitHooks {
		fn(key)
	}
}

func (m *Machine[K, R]) open(key K) {
	m.scope, m.inScope = key, true
}

func (m *Machine[K, R]) close() {
	var zero K
	m.scope, m.inScope = zero, false
}
