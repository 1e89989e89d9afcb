package main

import (
	"flag"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	m.Run()
}

func testContext(t *testing.T, flags map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("peer", "udp", "")
	set.String("addr", "", "")
	set.String("socket", "", "")
	set.Int("bufsize", 0, "")
	app := cli.NewApp()
	ctx := cli.NewContext(app, set, nil)
	for k, v := range flags {
		if err := set.Set(k, v); err != nil {
			t.Fatalf("set %s=%s: %v", k, v, err)
		}
	}
	return ctx
}

func TestNewPeerDefaultsToUDP(t *testing.T) {
	ctx := testContext(t, nil)
	p, addr, err := newPeer(ctx)
	if err != nil {
		t.Fatalf("newPeer: %v", err)
	}
	if addr != "127.0.0.1:9090" {
		t.Fatalf("addr = %q, want default", addr)
	}
	if p == nil {
		t.Fatalf("expected a non-nil UDP peer")
	}
}

func TestNewPeerUXDRequiresSocket(t *testing.T) {
	ctx := testContext(t, map[string]string{"peer": "uxd"})
	if _, _, err := newPeer(ctx); err == nil {
		t.Fatalf("expected an error when --socket is missing for uxd")
	}
}

func TestNewPeerUXD(t *testing.T) {
	ctx := testContext(t, map[string]string{"peer": "uxd", "socket": "/tmp/boxd.sock"})
	p, addr, err := newPeer(ctx)
	if err != nil {
		t.Fatalf("newPeer: %v", err)
	}
	if addr != "/tmp/boxd.sock" || p == nil {
		t.Fatalf("got (%v, %q)", p, addr)
	}
}
