package doer

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tymebox/tymebox/tyme"
)

// Doist is the root scheduler: it owns a virtual Clock and a set of
// Doers, and drives them through Enter/Recur/Exit in strict insertion
// order. At most one Doer runs at any instant (spec.md §5).
type Doist struct {
	clock *tyme.Clock
	tock  float64
	real  bool
	limit float64 // 0 means unbounded

	log *logrus.Entry

	doers []Doer
	dones []Doer

	closing bool
}

// Option configures a Doist at construction.
type Option func(*Doist)

// WithReal makes the Doist sleep between cycles to track wall time.
func WithReal(real bool) Option { return func(d *Doist) { d.real = real } }

// WithLimit bounds total tyme; the Doist closes surviving doers and
// stops once reached.
func WithLimit(limit float64) Option { return func(d *Doist) { d.limit = limit } }

// WithLogger attaches a logger; a discard logger is used if omitted.
func WithLogger(log *logrus.Entry) Option { return func(d *Doist) { d.log = log } }

// New builds a Doist with the given nominal tock.
func New(tock float64, opts ...Option) *Doist {
	d := &Doist{
		clock: tyme.NewClock(tock),
		tock:  tock,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		discard := logrus.New()
		discard.SetOutput(discardWriter{})
		d.log = logrus.NewEntry(discard)
	}
	return d
}

// discardWriter is the default sink when no logger is supplied;
// cmd/boxd installs a real one via WithLogger.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Tyme returns the scheduler's current virtual tyme.
func (d *Doist) Tyme() float64 { return d.clock.Tyme() }

// SetTyme pins this Doist's clock to an externally supplied tyme,
// without advancing it by a tock. A DoDoer calls this on its nested
// Doist each host cycle so the sub-Doist observes the host's tyme
// rather than its own, per spec.md §4.4.
func (d *Doist) SetTyme(tyme float64) { d.clock.SetTyme(tyme) }

// Ready binds each Doer's clock reader to this Doist and appends it to
// the live set, preserving call order.
func (d *Doist) Ready(doers ...Doer) {
	for _, doer := range doers {
		if tee, ok := doer.(interface{ Wind(tyme.Tymth) }); ok {
			tee.Wind(d.clock.Tymth())
		}
		d.doers = append(d.doers, doer)
	}
}

// Enter calls Enter on each live doer in order. A Doer whose Enter
// fails is aborted and dropped; siblings still enter.
func (d *Doist) Enter() {
	live := d.doers[:0]
	for _, doer := range d.doers {
		if err := doer.Enter(); err != nil {
			d.log.WithError(err).Error("doer aborted during enter")
			_ = doer.Abort(err)
			continue
		}
		live = append(live, doer)
	}
	d.doers = live
}

// Recur runs one scheduler cycle: every live doer whose tock has
// elapsed is given a chance to Recur, in insertion order. Doers that
// report done move to dones; doers whose Recur errors are aborted.
func (d *Doist) Recur() {
	now := d.clock.Tyme()
	live := d.doers[:0]
	for _, doer := range d.doers {
		base, hasBase := doer.(interface {
			DueToRecur(float64) bool
			MarkRecurred(float64)
		})
		if hasBase && !base.DueToRecur(now) {
			live = append(live, doer)
			continue
		}

		done, err := doer.Recur(now)
		if hasBase {
			base.MarkRecurred(now)
		}
		if err != nil {
			d.log.WithError(err).Error("doer aborted during recur")
			_ = doer.Abort(err)
			d.dones = append(d.dones, doer)
			continue
		}
		if done {
			d.log.Info("doer complete")
			_ = doer.Exit()
			d.dones = append(d.dones, doer)
			continue
		}
		live = append(live, doer)
	}
	d.doers = live
}

// Exit calls Exit on every remaining live doer, or Close instead once
// Close has been requested (or the limit was reached); used at the end
// of Do or on shutdown.
func (d *Doist) Exit() {
	for _, doer := range d.doers {
		if d.closing {
			_ = doer.Close()
		} else {
			_ = doer.Exit()
		}
	}
	d.dones = append(d.dones, d.doers...)
	d.doers = nil
}

// Close requests graceful shutdown: remaining doers are closed, not
// exited, on the next Exit call.
func (d *Doist) Close() {
	d.closing = true
}

// Do runs the full Ready -> Enter -> (Recur; tick)* -> Exit loop until
// every doer is done or the limit is reached.
func (d *Doist) Do(doers []Doer) {
	d.Ready(doers...)
	d.Enter()

	for len(d.doers) > 0 {
		d.Recur()

		if len(d.doers) == 0 || d.closing {
			break
		}

		target := time.Now()
		d.clock.Tick(0)
		if d.limit > 0 && d.clock.Tyme() >= d.limit {
			d.Close()
			break
		}
		if d.real {
			sleep := time.Duration(d.tock*float64(time.Second)) - time.Since(target)
			if sleep > 0 {
				time.Sleep(sleep)
			}
		}
	}

	d.Exit()
}

// Dones returns the doers that completed, in completion order.
func (d *Doist) Dones() []Doer { return d.dones }
