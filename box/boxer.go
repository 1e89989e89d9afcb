package box

import (
	"fmt"

	"github.com/tymebox/tymebox/doer"
)

// Boxer is the runner that maintains the current active pile
// (root-to-leaf path) over a tree of Boxes and executes transitions
// between them (spec.md §4.6). A Boxer satisfies doer.Doer: its Recur
// step is exactly "advance the active pile by one cycle"
// (spec.md §2's data-flow summary).
type Boxer struct {
	doer.Base

	Name string
	Mine *Mine
	Dock *Dock

	boxes map[string]*Box
	first *Box

	pile    []*Box
	entered bool
	done    bool
}

// NewBoxer builds an empty Boxer bound to the given Mine/Dock.
func NewBoxer(name string, mine *Mine, dock *Dock) *Boxer {
	return &Boxer{
		Base:  doer.NewBase(0),
		Name:  name,
		Mine:  mine,
		Dock:  dock,
		boxes: make(map[string]*Box),
	}
}

// Register adds b to the Boxer's name index. The first Box registered
// becomes the default "first" unless SetFirst is called explicitly.
func (bx *Boxer) Register(b *Box) error {
	if err := ValidateKey(b.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	if _, exists := bx.boxes[b.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, b.Name)
	}
	bx.boxes[b.Name] = b
	if bx.first == nil {
		bx.first = b
	}
	return nil
}

// Box looks up a registered Box by name.
func (bx *Boxer) Box(name string) (*Box, bool) {
	b, ok := bx.boxes[name]
	return b, ok
}

// SetFirst designates the Boxer's entry Box by name.
func (bx *Boxer) SetFirst(name string) error {
	b, ok := bx.boxes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnresolvedName, name)
	}
	bx.first = b
	return nil
}

// Pile returns the current active root-to-leaf path.
func (bx *Boxer) Pile() []*Box {
	out := make([]*Box, len(bx.pile))
	copy(out, bx.pile)
	return out
}

// Current returns the leaf of the active pile, or nil before the first
// cycle.
func (bx *Boxer) Current() *Box {
	if len(bx.pile) == 0 {
		return nil
	}
	return bx.pile[len(bx.pile)-1]
}

// Validate checks the registered Box set for the hierarchy invariants
// in spec.md §4.6: no cycles, every over/under reference resolved.
func (bx *Boxer) Validate() error {
	for _, b := range bx.boxes {
		seen := map[*Box]bool{}
		for cur := b; cur != nil; cur = cur.over {
			if seen[cur] {
				return fmt.Errorf("%w: at %q", ErrCycle, b.Name)
			}
			seen[cur] = true
			if cur.over != nil {
				found := false
				for _, u := range cur.over.unders {
					if u == cur {
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("%w: %q not listed under %q", ErrUnderBeforeOver, cur.Name, cur.over.Name)
				}
			}
		}
	}
	return nil
}

// exen is the four-way split computed for a transition from near to
// far (spec.md §4.5). computeExen documents the ancestor-truncation
// rule applied when far is an ancestor of (or equal to) near.
type exen struct {
	exits   []*Box
	enters  []*Box
	rexits  []*Box
	renters []*Box
}

func rootChain(b *Box) []*Box {
	var rev []*Box
	for cur := b; cur != nil; cur = cur.over {
		rev = append(rev, cur)
	}
	chain := make([]*Box, len(rev))
	for i, c := range rev {
		chain[len(rev)-1-i] = c
	}
	return chain
}

func commonPrefixLen(a, b []*Box) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func reversed(boxes []*Box) []*Box {
	out := make([]*Box, len(boxes))
	for i, b := range boxes {
		out[len(boxes)-1-i] = b
	}
	return out
}

// computeExen implements spec.md §4.5's exen algorithm. When far lies
// on near's own ancestor chain (including far == near, the self-transit
// case), the least-common-ancestor index is pulled back by one so that
// far itself is exited and freshly re-entered rather than kept as a
// still-active common ancestor. This is what makes a transit to an
// ancestor (or to the current box itself) restart that box's subtree,
// matching spec.md §8 scenario 1 exactly.
func computeExen(near, far *Box) exen {
	rcNear := rootChain(near)
	rcFar := rootChain(far)

	k := commonPrefixLen(rcNear, rcFar)
	if k == len(rcFar) {
		k--
	}

	pn := near.pile()
	pf := far.pile()

	return exen{
		exits:   reversed(pn[k:]),
		enters:  append([]*Box(nil), pf[k:]...),
		rexits:  reversed(pn[:k]),
		renters: append([]*Box(nil), pf[:k]...),
	}
}

// runPlain runs every PlainAct for ctx attached to b, in list order.
func (bx *Boxer) runPlain(b *Box, ctx Context, tyme float64) error {
	for _, act := range b.actsFor(ctx) {
		if err := act.Run(&RunCtx{Boxer: bx, Box: b, Tyme: tyme}); err != nil {
			return fmt.Errorf("box %q %s act %q: %w", b.Name, ctx, act.Name(), err)
		}
	}
	return nil
}

// enterBox runs Be always, and Ene only the first time this Box is
// ever entered across the Boxer's lifetime.
func (bx *Boxer) enterBox(b *Box, tyme float64) error {
	if err := bx.runPlain(b, Be, tyme); err != nil {
		return err
	}
	if !b.everEntered {
		if err := bx.runPlain(b, Ene, tyme); err != nil {
			return err
		}
		b.everEntered = true
	}
	return nil
}

// Enter runs the Boxer's once-only pre actions (pile order) and then
// performs the initial pile setup, matching Boxer cycle step 1.
func (bx *Boxer) Enter() error {
	if bx.first == nil {
		return fmt.Errorf("box: boxer %q has no first box", bx.Name)
	}
	initial := bx.first.pile()
	for _, b := range initial {
		if err := bx.runPlain(b, Pre, 0); err != nil {
			return err
		}
	}
	for _, b := range initial {
		if err := bx.enterBox(b, 0); err != nil {
			return err
		}
	}
	bx.pile = initial
	bx.entered = true
	return nil
}

// Recur runs exactly one Boxer cycle (spec.md §4.6 steps 2-5) and
// satisfies doer.Doer: it returns true once the Boxer is marked done
// by a terminal Act.
func (bx *Boxer) Recur(tyme float64) (bool, error) {
	if !bx.entered {
		if err := bx.Enter(); err != nil {
			return false, err
		}
	}

	for _, b := range bx.pile {
		if err := bx.runPlain(b, Re, tyme); err != nil {
			return false, err
		}
	}

	var destName string
	var firingBox *Box
	for i := len(bx.pile) - 1; i >= 0 && destName == ""; i-- {
		b := bx.pile[i]
		for _, tract := range b.Tracts {
			dest, err := tract.Transit(&RunCtx{Boxer: bx, Box: b, Tyme: tyme})
			if err != nil {
				return false, fmt.Errorf("box %q tract %q: %w", b.Name, tract.Name(), err)
			}
			if dest != "" {
				destName = dest
				firingBox = b
				break
			}
		}
	}

	if destName != "" {
		dest, ok := bx.boxes[destName]
		if !ok {
			return false, fmt.Errorf("%w: %q (from %q)", ErrUnresolvedName, destName, firingBox.Name)
		}
		if err := bx.transit(bx.Current(), dest, tyme); err != nil {
			return false, err
		}
	}

	return bx.done, nil
}

// transit runs the full exen sequence for a move from the current leaf
// to dest and updates the active pile.
func (bx *Boxer) transit(near, far *Box, tyme float64) error {
	ex := computeExen(near, far)

	for _, b := range ex.exits {
		if err := bx.runPlain(b, Exa, tyme); err != nil {
			return err
		}
	}
	for _, b := range ex.rexits {
		if err := bx.runPlain(b, Rexa, tyme); err != nil {
			return err
		}
	}
	for _, b := range ex.renters {
		if err := bx.runPlain(b, Rene, tyme); err != nil {
			return err
		}
	}
	for _, b := range ex.enters {
		if err := bx.enterBox(b, tyme); err != nil {
			return err
		}
	}

	bx.pile = far.pile()
	return nil
}

// Exit runs Exa for the whole active pile, leaf-first, on normal
// Boxer/Doist shutdown.
func (bx *Boxer) Exit() error {
	for i := len(bx.pile) - 1; i >= 0; i-- {
		if err := bx.runPlain(bx.pile[i], Exa, 0); err != nil {
			return err
		}
	}
	return nil
}

// Close tears down the same way Exit does; a Boxer has no distinct
// cancellation behavior of its own beyond running exacts.
func (bx *Boxer) Close() error { return bx.Exit() }

// Abort marks the Boxer done without running exacts, matching
// spec.md §7's "exceptions ... convert to abort" policy.
func (bx *Boxer) Abort(reason error) error {
	bx.done = true
	return nil
}

// Done reports whether a terminal Act has marked this Boxer complete.
func (bx *Boxer) Done() bool { return bx.done }
