package box

import (
	"reflect"
	"testing"
)

// buildTree constructs the tree from spec.md §8 scenario 1:
//
//	a < b < c < { d, e < f }
func buildTree() (a, b, c, d, e, f *Box) {
	a = &Box{Name: "a"}
	b = &Box{Name: "b", over: a}
	a.unders = []*Box{b}
	c = &Box{Name: "c", over: b}
	b.unders = []*Box{c}
	d = &Box{Name: "d", over: c}
	e = &Box{Name: "e", over: c}
	c.unders = []*Box{d, e}
	f = &Box{Name: "f", over: e}
	e.unders = []*Box{f}
	return
}

func names(boxes []*Box) []string {
	out := make([]string, len(boxes))
	for i, b := range boxes {
		out[i] = b.Name
	}
	return out
}

func TestPileExtendsThroughFirstUnder(t *testing.T) {
	_, _, c, _, _, _ := buildTree()

	got := names(c.pile())
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pile(c) = %v, want %v", got, want)
	}
}

func TestExenSiblingTransit(t *testing.T) {
	_, _, _, d, e, _ := buildTree()

	ex := computeExen(d, e)
	if got, want := names(ex.exits), []string{"d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("exits = %v, want %v", got, want)
	}
	if got, want := names(ex.enters), []string{"e", "f"}; !reflect.DeepEqual(got, want) {
		t.Errorf("enters = %v, want %v", got, want)
	}
	if got, want := names(ex.rexits), []string{"c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rexits = %v, want %v", got, want)
	}
	if got, want := names(ex.renters), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("renters = %v, want %v", got, want)
	}
}

func TestExenAncestorTransitRestartsTarget(t *testing.T) {
	_, b, c, _, _, _ := buildTree()

	ex := computeExen(c, b)
	if got, want := names(ex.exits), []string{"d", "c", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("exits = %v, want %v", got, want)
	}
	if got, want := names(ex.enters), []string{"b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("enters = %v, want %v", got, want)
	}
	if got, want := names(ex.rexits), []string{"a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rexits = %v, want %v", got, want)
	}
	if got, want := names(ex.renters), []string{"a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("renters = %v, want %v", got, want)
	}
}

func TestExenSelfTransitRestartsWholeSubtree(t *testing.T) {
	_, _, c, _, _, _ := buildTree()

	ex := computeExen(c, c)
	if got, want := names(ex.exits), []string{"d", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("exits = %v, want %v", got, want)
	}
	if got, want := names(ex.enters), []string{"c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("enters = %v, want %v", got, want)
	}
	if got, want := names(ex.rexits), []string{"b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rexits = %v, want %v", got, want)
	}
	if got, want := names(ex.renters), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("renters = %v, want %v", got, want)
	}
}

// TestBoxerNeedGuardedTransit matches spec.md §8 scenario 2: a tract
// guarded by a Need only fires once the referenced Mine cell holds.
func TestBoxerNeedGuardedTransit(t *testing.T) {
	mine := NewMine()
	bx := NewBoxer("lamp", mine, nil)
	mk := NewMaker(bx)

	var trace []string
	mk.Be("off", func() {
		mk.Do(NewAct("note-off", Re, nil, func(rc *RunCtx) error {
			trace = append(trace, "re:off")
			return nil
		}))
		mk.Do(NewGuardedTract("flip-on", MustNeed("M.switch == true"), "on"))
	})
	mk.Be("on", func() {
		mk.Do(NewAct("note-on", Be, nil, func(rc *RunCtx) error {
			trace = append(trace, "be:on")
			return nil
		}))
	})

	if err := bx.SetFirst("off"); err != nil {
		t.Fatalf("SetFirst: %v", err)
	}

	if _, err := bx.Recur(0); err != nil {
		t.Fatalf("Recur 0: %v", err)
	}
	if bx.Current().Name != "off" {
		t.Fatalf("expected to stay in off before the guard holds, got %q", bx.Current().Name)
	}

	mine.Put("switch", true, 1)
	if _, err := bx.Recur(1); err != nil {
		t.Fatalf("Recur 1: %v", err)
	}
	if bx.Current().Name != "on" {
		t.Fatalf("expected transit to on once M.switch is true, got %q", bx.Current().Name)
	}

	want := []string{"re:off", "re:off", "be:on"}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}

// TestBoxerEndActMarksDone matches the terminal-action open-question
// decision recorded in SPEC_FULL.md §10.
func TestBoxerEndActMarksDone(t *testing.T) {
	mine := NewMine()
	bx := NewBoxer("once", mine, nil)
	mk := NewMaker(bx)

	mk.Be("run", func() {
		mk.Do(NewEndAct("finish", Re, nil, "once"))
	})
	if err := bx.SetFirst("run"); err != nil {
		t.Fatalf("SetFirst: %v", err)
	}

	done, err := bx.Recur(0)
	if err != nil {
		t.Fatalf("Recur: %v", err)
	}
	if !done {
		t.Fatalf("expected Boxer to be done after its end act ran")
	}
}

func TestBoxerEneRunsOnlyOnFirstEntry(t *testing.T) {
	mine := NewMine()
	bx := NewBoxer("cycle", mine, nil)
	mk := NewMaker(bx)

	eneCount, beCount := 0, 0
	mk.Be("a", func() {
		mk.Do(NewGuardedTract("go-b", nil, "b"))
	})
	mk.Be("b", func() {
		mk.Do(NewAct("ene-b", Ene, nil, func(rc *RunCtx) error { eneCount++; return nil }))
		mk.Do(NewAct("be-b", Be, nil, func(rc *RunCtx) error { beCount++; return nil }))
		mk.Do(NewGuardedTract("go-a", nil, "a"))
	})
	if err := bx.SetFirst("a"); err != nil {
		t.Fatalf("SetFirst: %v", err)
	}

	for i := 0; i < 4; i++ {
		if _, err := bx.Recur(float64(i)); err != nil {
			t.Fatalf("Recur %d: %v", i, err)
		}
	}

	if eneCount != 1 {
		t.Fatalf("ene ran %d times, want exactly 1 (first entry only)", eneCount)
	}
	if beCount < 2 {
		t.Fatalf("be ran %d times, want at least 2 (every fresh entry)", beCount)
	}
}
