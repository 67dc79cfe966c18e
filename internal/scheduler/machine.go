// Package scheduler decides when shellcheck runs against an attached buffer.
//
// The scheduler is a plain value transitioned by Step. It never starts timers or
// processes itself: every transition returns the effects the host has to carry out,
// and the host reports back with events tagged by the generation it was given.
// Events carrying a generation that is no longer current are dropped, which is how
// superseded timers and checks are cancelled without being stopped.
package scheduler

import (
	"fmt"
	"time"
)

// State is the coarse state of the scheduler.
type State uint8

const (
	Idle State = iota
	PendingTimer
	Checking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingTimer:
		return "pending"
	case Checking:
		return "checking"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Event is an input of the scheduler.
type Event interface{ isEvent() }

// Attach connects a buffer whose project folder is Dir. The first check runs at once.
type Attach struct{ Dir string }

// Refresh re-evaluates the attached buffer after a save, load or language change.
// A buffer staying attached in the same folder is re-checked like after an edit.
type Refresh struct {
	Attachable bool
	Dir        string
	LineCount  int
}

// Detach disconnects the current buffer.
type Detach struct{}

// Changed reports an edit of a buffer now holding LineCount lines.
type Changed struct{ LineCount int }

// TimerFired reports that the debounce timer of generation Gen expired.
type TimerFired struct{ Gen uint64 }

// StartFailed reports that the check of generation Gen could not be started.
type StartFailed struct {
	Gen uint64
	Err error
}

// Finished reports that the check of generation Gen closed its output and exited.
// Err is set when the output could not be read completely.
type Finished struct {
	Gen    uint64
	Output []byte
	Err    error
}

func (Attach) isEvent()      {}
func (Refresh) isEvent()     {}
func (Detach) isEvent()      {}
func (Changed) isEvent()     {}
func (TimerFired) isEvent()  {}
func (StartFailed) isEvent() {}
func (Finished) isEvent()    {}

// Effect is an action the host carries out for the scheduler.
type Effect interface{ isEffect() }

// StartTimer arms the debounce timer; it reports TimerFired{Gen} after Delay.
type StartTimer struct {
	Gen   uint64
	Delay time.Duration
}

// CancelTimer disarms the timer of generation Gen.
type CancelTimer struct{ Gen uint64 }

// SpawnCheck runs shellcheck on the current buffer text in Dir. The host reports
// StartFailed{Gen} or, once the output is closed and the process exited, Finished{Gen}.
type SpawnCheck struct {
	Gen uint64
	Dir string
}

// StopWatch stops listening to the check of generation Gen. The process is left running.
type StopWatch struct{ Gen uint64 }

// Correlate parses the output of check Gen and publishes it when it parses.
type Correlate struct {
	Gen    uint64
	Output []byte
}

// Warn surfaces a non-fatal problem to the user.
type Warn struct{ Err error }

// ClearRendering replaces the published diagnostics with an empty snapshot.
type ClearRendering struct{}

func (StartTimer) isEffect()     {}
func (CancelTimer) isEffect()    {}
func (SpawnCheck) isEffect()     {}
func (StopWatch) isEffect()      {}
func (Correlate) isEffect()      {}
func (Warn) isEffect()           {}
func (ClearRendering) isEffect() {}

// Machine is the scheduling state of one buffer attachment. At most one of a pending
// timer and a check in flight exists: an edit drops the check it makes stale.
type Machine struct {
	policy   Policy
	attached bool
	dir      string
	seq      uint64
	timer    uint64
	check    uint64
}

// New returns a detached, idle machine using policy for debounce delays.
func New(policy Policy) Machine {
	return Machine{policy: policy}
}

// State reports the pending timer first, then an in-flight check.
func (m Machine) State() State {
	switch {
	case m.timer != 0:
		return PendingTimer
	case m.check != 0:
		return Checking
	}
	return Idle
}

// Attached reports whether a buffer is connected.
func (m Machine) Attached() bool { return m.attached }

// Dir returns the project folder of the attached buffer.
func (m Machine) Dir() string { return m.dir }

// Timer returns the generation of the pending timer, or 0.
func (m Machine) Timer() uint64 { return m.timer }

// InFlight returns the generation of the check being listened to, or 0.
func (m Machine) InFlight() uint64 { return m.check }

// Step applies ev to m and returns the new state with the effects to carry out, in order.
func Step(m Machine, ev Event) (Machine, []Effect) {
	var effects []Effect
	switch ev := ev.(type) {
	case Attach:
		effects = m.disconnect(effects)
		effects = m.connect(effects, ev.Dir)
	case Refresh:
		switch {
		case !ev.Attachable:
			effects = m.disconnect(effects)
		case !m.attached || ev.Dir != m.dir:
			effects = m.disconnect(effects)
			effects = m.connect(effects, ev.Dir)
		default:
			effects = m.debounce(effects, ev.LineCount)
		}
	case Detach:
		effects = m.disconnect(effects)
	case Changed:
		effects = m.debounce(effects, ev.LineCount)
	case TimerFired:
		if ev.Gen == 0 || ev.Gen != m.timer {
			break
		}
		m.timer = 0
		effects = m.spawn(effects)
	case StartFailed:
		if ev.Gen == 0 || ev.Gen != m.check {
			break
		}
		m.check = 0
		effects = append(effects, Warn{Err: ev.Err})
	case Finished:
		if ev.Gen == 0 || ev.Gen != m.check {
			break
		}
		m.check = 0
		if ev.Err != nil {
			effects = append(effects, Warn{Err: ev.Err})
			break
		}
		effects = append(effects, Correlate{Gen: ev.Gen, Output: ev.Output})
	}
	return m, effects
}

// Step is the method form of the package-level Step.
func (m *Machine) Step(ev Event) []Effect {
	var effects []Effect
	*m, effects = Step(*m, ev)
	return effects
}

func (m *Machine) next() uint64 {
	m.seq++
	return m.seq
}

func (m *Machine) connect(effects []Effect, dir string) []Effect {
	m.attached = true
	m.dir = dir
	return m.spawn(effects)
}

// debounce arms the timer unless one is pending. A check in flight was started on
// text older than the edit, so it is no longer listened to.
func (m *Machine) debounce(effects []Effect, lineCount int) []Effect {
	if !m.attached || m.timer != 0 {
		return effects
	}
	if m.check != 0 {
		effects = append(effects, StopWatch{Gen: m.check})
		m.check = 0
	}
	m.timer = m.next()
	return append(effects, StartTimer{Gen: m.timer, Delay: m.policy.Delay(lineCount)})
}

func (m *Machine) spawn(effects []Effect) []Effect {
	if m.check != 0 {
		effects = append(effects, StopWatch{Gen: m.check})
	}
	m.check = m.next()
	return append(effects, SpawnCheck{Gen: m.check, Dir: m.dir})
}

// disconnect drops the timer and the in-flight check, and clears the rendering of a
// previously attached buffer.
func (m *Machine) disconnect(effects []Effect) []Effect {
	if m.timer != 0 {
		effects = append(effects, CancelTimer{Gen: m.timer})
		m.timer = 0
	}
	if m.check != 0 {
		effects = append(effects, StopWatch{Gen: m.check})
		m.check = 0
	}
	if m.attached {
		effects = append(effects, ClearRendering{})
	}
	m.attached = false
	m.dir = ""
	return effects
}
