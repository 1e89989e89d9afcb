package box

import (
	"errors"
	"testing"
)

func TestRegisterActDuplicatePanics(t *testing.T) {
	RegisterAct("test.registry.dup", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		return NewAct(name, ctx, need, func(rc *RunCtx) error { return nil }), nil
	})

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate RegisterAct to panic")
		}
	}()
	RegisterAct("test.registry.dup", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		return nil, nil
	})
}

func TestBuildUnresolvedNameFails(t *testing.T) {
	_, err := Build("test.registry.nonexistent", Re, "", nil)
	if !errors.Is(err, ErrUnresolvedName) {
		t.Fatalf("Build with unregistered name = %v, want ErrUnresolvedName", err)
	}
}

func TestBuildCompilesNeedExpression(t *testing.T) {
	RegisterAct("test.registry.needed", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		if need == nil {
			t.Fatalf("expected Build to compile and pass the Need guard")
		}
		return NewAct(name, ctx, need, func(rc *RunCtx) error { return nil }), nil
	})

	if _, err := Build("test.registry.needed", Re, "M.x == 1", nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestBuildMalformedNeedFails(t *testing.T) {
	RegisterAct("test.registry.badneed", func(name string, ctx Context, need *Need, args map[string]string) (Act, error) {
		return NewAct(name, ctx, need, func(rc *RunCtx) error { return nil }), nil
	})

	if _, err := Build("test.registry.badneed", Re, "M.x >", nil); !errors.Is(err, ErrMalformedNeed) {
		t.Fatalf("Build with malformed need = %v, want ErrMalformedNeed", err)
	}
}

func TestBuiltinLogActRuns(t *testing.T) {
	act, err := Build("log", Re, "", map[string]string{"msg": "hello"})
	if err != nil {
		t.Fatalf("Build(log): %v", err)
	}
	plain, ok := act.(PlainAct)
	if !ok {
		t.Fatalf("expected log Act to be a PlainAct")
	}
	bx := NewBoxer("logtest", NewMine(), nil)
	rc := &RunCtx{Boxer: bx, Box: &Box{Name: "b"}, Tyme: 1}
	if err := plain.Run(rc); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestBuiltinPutMineActRuns(t *testing.T) {
	act, err := Build("put_mine", Re, "", map[string]string{"key": "lamp.on", "value": "true"})
	if err != nil {
		t.Fatalf("Build(put_mine): %v", err)
	}
	mine := NewMine()
	bx := NewBoxer("puttest", mine, nil)
	rc := &RunCtx{Boxer: bx, Box: &Box{Name: "b"}, Tyme: 1}
	if err := act.(PlainAct).Run(rc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, ok := mine.Get("lamp.on")
	if !ok || b.Value != "true" {
		t.Fatalf("got %+v, %v", b, ok)
	}
}

func TestBuiltinPutMineActRejectsInvalidKey(t *testing.T) {
	if _, err := Build("put_mine", Re, "", map[string]string{"key": "1bad", "value": "x"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Build(put_mine) with bad key = %v, want ErrInvalidKey", err)
	}
}

func TestBuiltinTransitActRequiresTractContext(t *testing.T) {
	if _, err := Build("transit", Re, "", map[string]string{"dest": "x"}); err == nil {
		t.Fatalf("expected transit built outside Tract context to fail")
	}
	if _, err := Build("transit", Tract, "", map[string]string{"dest": "x"}); err != nil {
		t.Fatalf("Build(transit) in Tract context: %v", err)
	}
}
