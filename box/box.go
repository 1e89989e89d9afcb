package box

// Box is a node of the hierarchical box machine: a name, a pointer to
// its containing Box ("over"), the Boxes it directly contains
// ("unders"), and the eight ordered action lists, one per Context
// (spec.md §3).
type Box struct {
	Name string

	over   *Box
	unders []*Box

	// everEntered tracks whether this Box has ever been entered across
	// the owning Boxer's lifetime, so Ene acts fire only on the true
	// first entry while Be acts fire on every fresh (non-rene) entry.
	everEntered bool

	Preacts []PlainAct
	Beacts  []PlainAct
	Renacts []PlainAct
	Enacts  []PlainAct
	Reacts  []PlainAct
	Tracts  []TractAct
	Exacts  []PlainAct
	Rexacts []PlainAct
}

// Over returns the containing Box, or nil for a top-level Box.
func (b *Box) Over() *Box { return b.over }

// Unders returns the directly-contained Boxes, in definition order.
func (b *Box) Unders() []*Box { return b.unders }

// actsFor returns the action list for the given context. Tract has no
// PlainAct list (it is TractAct-typed) and is handled separately by
// callers.
func (b *Box) actsFor(ctx Context) []PlainAct {
	switch ctx {
	case Pre:
		return b.Preacts
	case Be:
		return b.Beacts
	case Rene:
		return b.Renacts
	case Ene:
		return b.Enacts
	case Re:
		return b.Reacts
	case Exa:
		return b.Exacts
	case Rexa:
		return b.Rexacts
	default:
		return nil
	}
}

func (b *Box) appendAct(ctx Context, act PlainAct) {
	switch ctx {
	case Pre:
		b.Preacts = append(b.Preacts, act)
	case Be:
		b.Beacts = append(b.Beacts, act)
	case Rene:
		b.Renacts = append(b.Renacts, act)
	case Ene:
		b.Enacts = append(b.Enacts, act)
	case Re:
		b.Reacts = append(b.Reacts, act)
	case Exa:
		b.Exacts = append(b.Exacts, act)
	case Rexa:
		b.Rexacts = append(b.Rexacts, act)
	}
}

// pile returns the root-to-leaf path from the topmost over-ancestor of
// b down through b, extended by b's canonical active continuation: the
// chain through the first entry of unders, recursively (spec.md §3).
func (b *Box) pile() []*Box {
	// walk up to the root
	var ancestors []*Box
	for cur := b; cur != nil; cur = cur.over {
		ancestors = append(ancestors, cur)
	}
	// reverse into root-first order
	path := make([]*Box, len(ancestors))
	for i, a := range ancestors {
		path[len(ancestors)-1-i] = a
	}
	// extend through the canonical (first-under) continuation below b
	for cur := b; len(cur.unders) > 0; cur = cur.unders[0] {
		path = append(path, cur.unders[0])
	}
	return path
}
