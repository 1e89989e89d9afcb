package box

// Context identifies which of a Box's eight action lists an Act
// belongs to (spec.md §3/§4.5). Every Act carries an explicit Context
// set at construction (the open-question decision recorded in
// SPEC_FULL.md §10).
type Context int

const (
	Pre Context = iota
	Be
	Rene
	Ene
	Re
	Tract
	Exa
	Rexa
)

func (c Context) String() string {
	switch c {
	case Pre:
		return "pre"
	case Be:
		return "be"
	case Rene:
		return "rene"
	case Ene:
		return "ene"
	case Re:
		return "re"
	case Tract:
		return "tract"
	case Exa:
		return "exa"
	case Rexa:
		return "rexa"
	default:
		return "unknown"
	}
}

// RunCtx is what an Act sees when it runs: the Boxer driving it, the
// Box it is attached to, and the current tyme.
type RunCtx struct {
	Boxer *Boxer
	Box   *Box
	Tyme  float64
}

// Act is the common shape of every named, registrable action
// (spec.md §9 Design Note: "static {name -> constructor} table").
type Act interface {
	Name() string
	Context() Context
}

// PlainAct runs for side effect in every context except Tract.
type PlainAct interface {
	Act
	Run(rc *RunCtx) error
}

// TractAct is consulted in the Tract context only: it returns the
// destination Box's name to transit to, or "" for no transition.
// Per spec.md §4.6, the first TractAct (in leaf-to-root box order)
// whose Transit returns a non-empty name wins the cycle.
type TractAct interface {
	Act
	Transit(rc *RunCtx) (dest string, err error)
}

// funcAct is the concrete PlainAct most builtin and user-defined
// actions are built from.
type funcAct struct {
	name string
	ctx  Context
	need *Need
	fn   func(rc *RunCtx) error
}

// NewAct builds a PlainAct named name for the given context. If need
// is non-nil, Run first evaluates it against the Boxer's Mine/Dock and
// is a no-op when it is false.
func NewAct(name string, ctx Context, need *Need, fn func(rc *RunCtx) error) PlainAct {
	return &funcAct{name: name, ctx: ctx, need: need, fn: fn}
}

func (a *funcAct) Name() string      { return a.name }
func (a *funcAct) Context() Context  { return a.ctx }

func (a *funcAct) Run(rc *RunCtx) error {
	if a.need != nil {
		ok, err := a.need.Eval(rc.Boxer.Mine, rc.Boxer.Dock)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	if a.fn == nil {
		return nil
	}
	return a.fn(rc)
}

// guardedTract is the canonical TractAct: "if Need, transit to dest".
type guardedTract struct {
	name string
	need *Need
	dest string
}

// NewGuardedTract builds the common case of a transit Act: a Need
// guard paired with a destination Box name, matching spec.md §8
// scenario 2 exactly.
func NewGuardedTract(name string, need *Need, dest string) TractAct {
	return &guardedTract{name: name, need: need, dest: dest}
}

func (g *guardedTract) Name() string     { return g.name }
func (g *guardedTract) Context() Context { return Tract }

func (g *guardedTract) Transit(rc *RunCtx) (string, error) {
	if g.need == nil {
		return g.dest, nil
	}
	ok, err := g.need.Eval(rc.Boxer.Mine, rc.Boxer.Dock)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return g.dest, nil
}

// endAct marks its Boxer terminally done when its Need (if any) holds.
// Per SPEC_FULL.md §10, it carries an explicit BoxerName rather than
// relying on an ambient "current boxer" pointer.
type endAct struct {
	name      string
	ctx       Context
	need      *Need
	boxerName string
}

// NewEndAct builds a terminal action: when run (in any non-Tract
// context, typically Re or Exa), it marks the Boxer identified by
// boxerName as done if the guard holds (or unconditionally if need is
// nil).
func NewEndAct(name string, ctx Context, need *Need, boxerName string) PlainAct {
	return &endAct{name: name, ctx: ctx, need: need, boxerName: boxerName}
}

func (e *endAct) Name() string     { return e.name }
func (e *endAct) Context() Context { return e.ctx }

func (e *endAct) Run(rc *RunCtx) error {
	if e.need != nil {
		ok, err := e.need.Eval(rc.Boxer.Mine, rc.Boxer.Dock)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	if rc.Boxer.Name == e.boxerName {
		rc.Boxer.done = true
	}
	return nil
}
