package doer

import "testing"

// countDoer finishes after N recurs, recording the order in which it
// ran relative to siblings via a shared log slice.
type countDoer struct {
	Base
	name    string
	limit   int
	count   int
	log     *[]string
	entered bool
}

func newCountDoer(name string, limit int, log *[]string) *countDoer {
	return &countDoer{Base: NewBase(0), name: name, limit: limit, log: log}
}

func (c *countDoer) Enter() error {
	c.entered = true
	*c.log = append(*c.log, c.name+":enter")
	return nil
}

func (c *countDoer) Recur(tyme float64) (bool, error) {
	c.count++
	*c.log = append(*c.log, c.name+":recur")
	return c.count >= c.limit, nil
}

func (c *countDoer) Exit() error {
	*c.log = append(*c.log, c.name+":exit")
	return nil
}

func TestDoistLivenessTwoDoers(t *testing.T) {
	var log []string
	a := newCountDoer("a", 3, &log)
	b := newCountDoer("b", 3, &log)

	d := New(1.0)
	cycles := 0
	d.Ready(a, b)
	d.Enter()
	for len(d.doers) > 0 && cycles < 10 {
		d.Recur()
		d.clockTickForTest()
		cycles++
	}
	d.Exit()

	if cycles > 4 {
		t.Fatalf("expected termination within 4 cycles, took %d", cycles)
	}
	if d.Tyme() > 4.0 {
		t.Fatalf("expected final tyme within 4 tocks, got %v", d.Tyme())
	}
	if a.count != 3 || b.count != 3 {
		t.Fatalf("expected each doer to recur 3 times, got a=%d b=%d", a.count, b.count)
	}
}

func TestDoistOrderingPreserved(t *testing.T) {
	var log []string
	a := newCountDoer("a", 1, &log)
	b := newCountDoer("b", 1, &log)
	c := newCountDoer("c", 1, &log)

	d := New(1.0)
	d.Ready(a, b, c)
	d.Enter()
	d.Recur()
	d.Exit()

	want := []string{"a:enter", "b:enter", "c:enter", "a:recur", "a:exit", "b:recur", "b:exit", "c:recur", "c:exit"}
	if len(log) != len(want) {
		t.Fatalf("log length mismatch: got %v want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %q want %q (full: %v)", i, log[i], want[i], log)
		}
	}
}

type erroringDoer struct {
	Base
	aborted bool
}

func (e *erroringDoer) Recur(tyme float64) (bool, error) {
	return false, errBoom
}

func (e *erroringDoer) Abort(reason error) error {
	e.aborted = true
	return nil
}

var errBoom = errBoomType{}

type errBoomType struct{}

func (errBoomType) Error() string { return "boom" }

func TestDoistAbortsOnRecurError(t *testing.T) {
	e := &erroringDoer{Base: NewBase(0)}
	d := New(1.0)
	d.Ready(e)
	d.Enter()
	d.Recur()

	if !e.aborted {
		t.Fatalf("expected doer to be aborted after recur error")
	}
	if len(d.doers) != 0 {
		t.Fatalf("expected aborted doer to be removed from live set")
	}
}

// clockTickForTest advances the Doist's private clock the same way Do
// would, without pulling in real-time sleeping.
func (d *Doist) clockTickForTest() {
	d.clock.Tick(0)
}
