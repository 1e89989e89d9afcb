package doer

// DoDoer nests a Doist inside a parent Doist as a single Doer: one
// sub-cycle runs per host cycle, sharing the host's tyme rather than
// advancing its own. Pausing or cancelling a DoDoer cascades to every
// descendant it drives (spec.md §4.4).
type DoDoer struct {
	Base

	sub *Doist
	all []Doer
}

// NewDoDoer builds a DoDoer that will drive the given child Doers as a
// nested Doist once entered.
func NewDoDoer(children ...Doer) *DoDoer {
	return &DoDoer{
		Base: NewBase(0),
		sub:  New(0),
		all:  children,
	}
}

// Enter winds and enters every child Doer.
func (dd *DoDoer) Enter() error {
	dd.sub.Ready(dd.all...)
	dd.sub.Enter()
	return nil
}

// Recur runs one sub-cycle: every live child gets a chance to Recur at
// the host's tyme. DoDoer is done once every child has completed.
func (dd *DoDoer) Recur(tyme float64) (bool, error) {
	dd.sub.SetTyme(tyme)
	dd.sub.Recur()
	done := len(dd.sub.doers) == 0
	return done, nil
}

// Exit runs Exit across any children that are still live (normal
// completion of the parent while children remain, e.g. the host's
// scheduler limit was hit).
func (dd *DoDoer) Exit() error {
	dd.sub.Exit()
	return nil
}

// Close cascades a cancellation request to every child.
func (dd *DoDoer) Close() error {
	dd.sub.Close()
	dd.sub.Exit()
	return nil
}

// Abort cascades an abort to every surviving child.
func (dd *DoDoer) Abort(reason error) error {
	for _, child := range dd.sub.doers {
		_ = child.Abort(reason)
	}
	dd.sub.doers = nil
	return nil
}

// Dones returns the children that have completed so far.
func (dd *DoDoer) Dones() []Doer { return dd.sub.Dones() }
