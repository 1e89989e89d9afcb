package box

import (
	"fmt"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/sirupsen/logrus"
)

// ActBuilder constructs an Act from a name and an optional Need guard.
// Builtin Acts register one of these at package init; user code may
// register its own under a project-specific name prefix.
type ActBuilder func(name string, ctx Context, need *Need, args map[string]string) (Act, error)

// registry is the static {name -> constructor} table described in
// SPEC_FULL.md's Design Note on replacing function-decorator
// registration with an explicit registry, backed by the same
// immutable radix tree the teacher uses for its handler lookup table
// (only here keyed by dotted Act name instead of filesystem path).
var registry = iradix.New()

// RegisterAct adds a named Act constructor to the static registry.
// Calling RegisterAct twice for the same name is a programming error
// and panics, mirroring the teacher's handler-registration posture
// (duplicate registration is always a build-time mistake).
func RegisterAct(name string, build ActBuilder) {
	if _, existed := registry.Get([]byte(name)); existed {
		panic(fmt.Errorf("box: registry: %w: %q", ErrAlreadyRegistered, name))
	}
	var ok bool
	registry, _, ok = registry.Insert([]byte(name), build)
	if ok {
		panic(fmt.Errorf("box: registry: %w: %q", ErrAlreadyRegistered, name))
	}
}

// LookupAct resolves a registered Act constructor by name.
func LookupAct(name string) (ActBuilder, bool) {
	v, ok := registry.Get([]byte(name))
	if !ok {
		return nil, false
	}
	return v.(ActBuilder), true
}

// Build constructs a named, registered Act, compiling needExpr (if
// non-empty) into a Need guard first.
func Build(name string, ctx Context, needExpr string, args map[string]string) (Act, error) {
	build, ok := LookupAct(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedName, name)
	}
	var need *Need
	if needExpr != "" {
		n, err := NewNeed(needExpr)
		if err != nil {
			return nil, err
		}
		need = n
	}
	return build(name, ctx, need, args)
}

func init() {
	RegisterAct("log", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		level := args["level"]
		msg := args["msg"]
		return NewAct(name, ctx, need, func(rc *RunCtx) error {
			entry := logrus.WithFields(logrus.Fields{
				"boxer": rc.Boxer.Name,
				"box":   rc.Box.Name,
				"tyme":  rc.Tyme,
			})
			switch level {
			case "warn":
				entry.Warn(msg)
			case "error":
				entry.Error(msg)
			default:
				entry.Info(msg)
			}
			return nil
		}), nil
	})

	RegisterAct("put_mine", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		key := args["key"]
		value := args["value"]
		if err := ValidateKey(key); err != nil {
			return nil, err
		}
		return NewAct(name, ctx, need, func(rc *RunCtx) error {
			rc.Boxer.Mine.Put(key, value, rc.Tyme)
			return nil
		}), nil
	})

	RegisterAct("put_dock", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		key := args["key"]
		value := args["value"]
		if err := ValidateKey(key); err != nil {
			return nil, err
		}
		return NewAct(name, ctx, need, func(rc *RunCtx) error {
			if rc.Boxer.Dock == nil {
				return fmt.Errorf("box: put_dock: boxer %q has no Dock", rc.Boxer.Name)
			}
			return rc.Boxer.Dock.Put(key, value, rc.Tyme)
		}), nil
	})

	RegisterAct("transit", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		if ctx != Tract {
			return nil, fmt.Errorf("box: transit: must be registered in Tract context")
		}
		return NewGuardedTract(name, need, args["dest"]), nil
	})

	RegisterAct("end", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		return NewEndAct(name, ctx, need, args["boxer"]), nil
	})
}
