package combat

import "time"

type stepKind int

const (
	stepIdle stepKind = iota
	stepWait
	stepGoto
)

// Step is what a phase hands back to the Controller: wait for input, wait for
// time to pass, or move to another phase.
type Step struct {
	kind      stepKind
	wait      time.Duration
	animation bool
	next      func() Step
	phase     PhaseID
}

// Idle waits for the next Signal.
func Idle() Step { return Step{kind: stepIdle} }

// After waits d of controller time, then continues with next.
//
// Precondition: next must not be nil.
func After(d time.Duration, next func() Step) Step {
	return Step{kind: stepWait, wait: d, next: next}
}

// Animate is After for a running animation. Signals are not delivered until it completes.
//
// Precondition: next must not be nil.
func Animate(d time.Duration, next func() Step) Step {
	return Step{kind: stepWait, wait: d, next: next, animation: true}
}

// Goto transitions to phase.
func Goto(phase PhaseID) Step { return Step{kind: stepGoto, phase: phase} }

func goTo(phase PhaseID) func() Step {
	return func() Step { return Goto(phase) }
}

type pendingWait struct {
	owner     PhaseID
	remaining time.Duration
	animation bool
	next      func() Step
}
