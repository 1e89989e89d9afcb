// Package tyme implements the virtual clock at the bottom of the
// scheduler: a monotone, non-negative "tyme" value advanced in fixed
// "tock" increments, plus the Tymee mixin that lets any object read a
// clock it does not own.
package tyme

// Tymist is anything that owns and advances a virtual clock.
type Tymist interface {
	Tyme() float64
	Tock() float64
}

// Tymth is a closure that reads the live tyme of whatever Tymist it was
// bound to. Handing a Tymee one of these "winds" it onto that Tymist.
type Tymth func() float64

// Clock is the concrete Tymist used by a Doist. It is not safe for
// concurrent use from more than one goroutine; the single-threaded
// scheduler contract (spec.md §5) makes that unnecessary.
type Clock struct {
	tyme float64
	tock float64
}

// NewClock builds a Clock with the given nominal tock. A tock of 0
// means the owning scheduler should run as fast as possible.
func NewClock(tock float64) *Clock {
	return &Clock{tock: tock}
}

func (c *Clock) Tyme() float64 { return c.tyme }
func (c *Clock) Tock() float64 { return c.tock }

// SetTyme pins the clock to an externally supplied tyme, rather than
// advancing it by a tock. Used by a nested scheduler that shares its
// host's tyme instead of owning its own.
func (c *Clock) SetTyme(tyme float64) { c.tyme = tyme }

// Tick advances the clock by its own tock, or by the given override if
// positive, and returns the new tyme. Tyme never decreases.
func (c *Clock) Tick(tock float64) float64 {
	if tock <= 0 {
		tock = c.tock
	}
	c.tyme += tock
	return c.tyme
}

// Tymth returns a closure reading this Clock's live tyme, for winding a
// Tymee.
func (c *Clock) Tymth() Tymth {
	return func() float64 { return c.tyme }
}

// Tymee is embedded by anything that needs a bound clock reader without
// owning the clock itself (Doers, including Boxers, via doer.Base; they
// read 0 until wound onto a Doist).
type Tymee struct {
	tymth Tymth
}

// Wind binds t to a live Tymist clock reader. Called by a Doist on
// Ready().
func (t *Tymee) Wind(tymth Tymth) {
	t.tymth = tymth
}

// Tyme returns the live tyme of the bound Tymist, or 0 if never wound.
func (t *Tymee) Tyme() float64 {
	if t.tymth == nil {
		return 0
	}
	return t.tymth()
}

// Wound reports whether Wind has been called.
func (t *Tymee) Wound() bool { return t.tymth != nil }

// Tymer is a one-shot countdown against a wound Tymee's clock. It never
// advances tyme itself; only the owning scheduler's ticks do that.
type Tymer struct {
	Tymee
	start    float64
	duration float64
}

// NewTymer creates a Tymer bound to tymth, starting now, expiring after
// duration tyme units.
func NewTymer(tymth Tymth, duration float64) *Tymer {
	tmr := &Tymer{duration: duration}
	tmr.Wind(tymth)
	tmr.start = tmr.Tyme()
	return tmr
}

// Restart resets the countdown to start now, optionally with a new
// duration (ignored if negative).
func (t *Tymer) Restart(duration float64) {
	if duration >= 0 {
		t.duration = duration
	}
	t.start = t.Tyme()
}

// Expired reports whether the countdown has elapsed.
func (t *Tymer) Expired() bool {
	return t.Tyme() >= t.start+t.duration
}

// Remaining returns the tyme left before expiry, floored at 0.
func (t *Tymer) Remaining() float64 {
	left := t.start + t.duration - t.Tyme()
	if left < 0 {
		return 0
	}
	return left
}
