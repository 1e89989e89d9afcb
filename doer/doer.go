// Package doer implements the cooperative scheduling core: a Doer
// contract, the Doist that runs a set of Doers to completion, and the
// DoDoer that nests one Doist inside another as a single Doer.
package doer

import "github.com/tymebox/tymebox/tyme"

// Doer is a unit of cooperative work driven by a Doist. None of its
// methods may block; Recur is called once per scheduler cycle and must
// return promptly.
type Doer interface {
	// Enter performs one-shot setup. Called once, in Doist order,
	// before the first Recur.
	Enter() error
	// Recur is called once per scheduler cycle while the Doer is live.
	// It returns true when the Doer has finished its work.
	Recur(tyme float64) (bool, error)
	// Exit performs one-shot teardown on normal completion.
	Exit() error
	// Close performs one-shot teardown on external cancellation.
	Close() error
	// Abort performs one-shot teardown after a propagated failure.
	Abort(reason error) error
	// Tock is this Doer's desired minimum cycle period. 0 means ASAP,
	// i.e. run every Doist cycle.
	Tock() float64
	// Done reports terminal completion.
	Done() bool
}

// Base is embedded by concrete Doers to pick up bookkeeping shared by
// almost every implementation: the bound clock reader, the desired
// tock, the done flag, and the tyme of the last Recur (used by Doist to
// decide whether a Doer's tock has elapsed).
type Base struct {
	tyme.Tymee
	tock         float64
	done         bool
	lastRecur    float64
	everRecurred bool
}

// NewBase builds a Base with the given tock.
func NewBase(tock float64) Base {
	return Base{tock: tock}
}

func (b *Base) Tock() float64 { return b.tock }
func (b *Base) Done() bool    { return b.done }

// SetDone marks the Doer terminally complete; Recur implementations
// call this instead of managing a done flag themselves.
func (b *Base) SetDone(done bool) { b.done = done }

// DueToRecur reports whether enough tyme has elapsed since the last
// Recur to run another one, per this Doer's Tock. The first Recur is
// always due.
func (b *Base) DueToRecur(now float64) bool {
	if !b.everRecurred {
		return true
	}
	if b.tock <= 0 {
		return true
	}
	return now-b.lastRecur >= b.tock
}

// MarkRecurred records that a Recur ran at the given tyme.
func (b *Base) MarkRecurred(now float64) {
	b.lastRecur = now
	b.everRecurred = true
}

// Enter, Exit, Close and Abort are no-ops by default so embedders only
// override what they need.
func (b *Base) Enter() error             { return nil }
func (b *Base) Exit() error              { return nil }
func (b *Base) Close() error             { return nil }
func (b *Base) Abort(reason error) error { return nil }
