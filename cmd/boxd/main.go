package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/afero"

	systemd "github.com/coreos/go-systemd/v22/daemon"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/tymebox/tymebox/boss"
	"github.com/tymebox/tymebox/box"
	"github.com/tymebox/tymebox/doer"
	"github.com/tymebox/tymebox/memo"
	"github.com/tymebox/tymebox/peer"
)

const usage string = `boxd box-machine daemon

boxd drives a hierarchical box machine on a cooperative, virtual-tyme
scheduler and ships fragmented memos over a UDP or UXD peer.
`

var (
	version  string
	commitId string
	builtAt  string
	builtBy  string
)

// exitHandler tears down the Doist gracefully on a termination signal.
func exitHandler(signalChan chan os.Signal, d *doer.Doist, prof interface{ Stop() }) {
	s := <-signalChan
	logrus.Warnf("boxd caught signal: %s", s)
	logrus.Info("Stopping (gracefully) ...")

	systemd.SdNotify(false, systemd.SdNotifyStopping)

	switch s {
	case syscall.SIGABRT, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGSEGV:
		stacktrace := make([]byte, 32768)
		length := runtime.Stack(stacktrace, true)
		logrus.Warnf("\n\n%s\n", string(stacktrace[:length]))
	}

	d.Close()

	if prof != nil {
		prof.Stop()
	}

	logrus.Info("Exiting ...")
}

func runProfiler(ctx *cli.Context) (interface{ Stop() }, error) {
	cpuOn := ctx.Bool("cpu-profiling")
	memOn := ctx.Bool("memory-profiling")
	if cpuOn && memOn {
		return nil, fmt.Errorf("unsupported parameter combination: cpu and memory profiling")
	}
	if !cpuOn && !memOn {
		return nil, nil
	}
	if cpuOn {
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
	}
	return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook), nil
}

func newPeer(ctx *cli.Context) (peer.Peer, string, error) {
	switch ctx.GlobalString("peer") {
	case "uxd":
		path := ctx.GlobalString("socket")
		if path == "" {
			return nil, "", fmt.Errorf("--socket is required for --peer=uxd")
		}
		return peer.NewUXDPeer(path), path, nil
	default:
		addr := ctx.GlobalString("addr")
		if addr == "" {
			addr = "127.0.0.1:9090"
		}
		return peer.NewUDPPeer(addr, peer.WithBufsize(ctx.GlobalInt("bufsize"))), addr, nil
	}
}

func runCrew(ctx *cli.Context, controlPath string, index int) error {
	cd, err := boss.NewCrewDoer(controlPath, index, ctx.GlobalFloat64("tock"),
		boss.WithCrewLogger(logrus.WithField("crew", index)))
	if err != nil {
		return fmt.Errorf("failed to build crew doer: %w", err)
	}
	defer cd.Close()

	bx, err := buildBoxer(ctx)
	if err != nil {
		return err
	}

	systemd.SdNotify(false, systemd.SdNotifyReady)
	logrus.WithField("crew", index).Info("ready")
	cd.Run(bx)
	return nil
}

func buildBoxer(ctx *cli.Context) (*box.Boxer, error) {
	mine := box.NewMine()
	var dock *box.Dock
	if dir := ctx.GlobalString("dock-dir"); dir != "" {
		dock = box.NewDock(afero.NewOsFs(), dir)
	}
	bx := box.NewBoxer("boxd", mine, dock)
	return bx, nil
}

func runBoss(ctx *cli.Context, controlPath string) error {
	crewPeer, _, err := newPeer(ctx)
	if err != nil {
		return err
	}
	if err := crewPeer.Open(); err != nil {
		return fmt.Errorf("failed to open boss peer: %w", err)
	}

	m := memo.NewMemoer(crewPeer, ctx.GlobalInt("gram-size"),
		memo.WithCurt(ctx.GlobalBool("curt")),
		memo.WithVerific(ctx.GlobalBool("verific")),
		memo.WithMemoerLogger(logrus.WithField("doer", "boss-memoer")),
	)

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	b := boss.NewBossDoer(self, os.Args[1:], ctx.GlobalInt("crew-count"), controlPath, m,
		boss.WithBossLogger(logrus.WithField("doer", "boss")))

	d := doer.New(ctx.GlobalFloat64("tock"), doer.WithLogger(logrus.WithField("doer", "doist")))

	prof, err := runProfiler(ctx)
	if err != nil {
		return err
	}

	exitChan := make(chan os.Signal, 1)
	signal.Notify(exitChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGSEGV, syscall.SIGQUIT)
	go exitHandler(exitChan, d, prof)

	systemd.SdNotify(false, systemd.SdNotifyReady)
	logrus.Info("Ready ...")

	d.Do([]doer.Doer{b})

	logrus.Info("Done.")
	return nil
}

func runStandalone(ctx *cli.Context) error {
	p, _, err := newPeer(ctx)
	if err != nil {
		return err
	}
	if err := p.Open(); err != nil {
		return fmt.Errorf("failed to open peer: %w", err)
	}

	m := memo.NewMemoer(p, ctx.GlobalInt("gram-size"),
		memo.WithCurt(ctx.GlobalBool("curt")),
		memo.WithVerific(ctx.GlobalBool("verific")),
		memo.WithMemoerLogger(logrus.WithField("doer", "memoer")),
	)

	bx, err := buildBoxer(ctx)
	if err != nil {
		return err
	}

	doistOpts := []doer.Option{doer.WithLogger(logrus.WithField("doer", "doist"))}
	if limit := ctx.GlobalFloat64("limit"); limit > 0 {
		doistOpts = append(doistOpts, doer.WithLimit(limit))
	}
	d := doer.New(ctx.GlobalFloat64("tock"), doistOpts...)

	prof, err := runProfiler(ctx)
	if err != nil {
		return err
	}

	exitChan := make(chan os.Signal, 1)
	signal.Notify(exitChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGSEGV, syscall.SIGQUIT)
	go exitHandler(exitChan, d, prof)

	systemd.SdNotify(false, systemd.SdNotifyReady)
	logrus.Info("Ready ...")

	d.Do([]doer.Doer{m, bx})

	logrus.Info("Done.")
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "boxd"
	app.Usage = usage
	app.Version = version

	app.Flags = []cli.Flag{
		cli.Float64Flag{Name: "tock", Value: 1.0, Usage: "nominal scheduler cycle length"},
		cli.Float64Flag{Name: "limit", Value: 0, Usage: "stop after this much virtual tyme has elapsed (0: unbounded)"},
		cli.StringFlag{Name: "peer", Value: "udp", Usage: "transport kind: udp or uxd"},
		cli.StringFlag{Name: "addr", Usage: "UDP bind address (host:port)"},
		cli.StringFlag{Name: "socket", Usage: "UXD bind path"},
		cli.IntFlag{Name: "bufsize", Value: 0, Usage: "raise SO_SNDBUF/SO_RCVBUF to this if the kernel default is smaller"},
		cli.IntFlag{Name: "gram-size", Value: 1400, Usage: "max bytes per outgoing gram"},
		cli.BoolFlag{Name: "curt", Usage: "use binary gram framing instead of base64url text"},
		cli.BoolFlag{Name: "verific", Usage: "drop unsigned grams on receipt"},
		cli.StringFlag{Name: "dock-dir", Usage: "directory for Dock persistence (empty: no Dock)"},
		cli.IntFlag{Name: "crew-count", Value: 0, Usage: "spawn N crew child processes instead of running standalone"},
		cli.StringFlag{Name: "log", Value: "", Usage: "log file path or empty string for stderr"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warning, error, fatal"},
		cli.StringFlag{Name: "log-format", Value: "text", Usage: "text or json"},
		cli.BoolFlag{Name: "cpu-profiling", Hidden: true},
		cli.BoolFlag{Name: "memory-profiling", Hidden: true},
	}

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("boxd\n\tversion: \t%s\n\tcommit: \t%s\n\tbuilt at: \t%s\n\tbuilt by: \t%s\n",
			c.App.Version, commitId, builtAt, builtBy)
	}

	app.Before = func(ctx *cli.Context) error {
		rand.Seed(time.Now().UnixNano())

		if path := ctx.GlobalString("log"); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND|os.O_SYNC, 0666)
			if err != nil {
				return fmt.Errorf("failed to open log file %s: %w", path, err)
			}
			logrus.SetOutput(f)
		} else {
			logrus.SetOutput(os.Stderr)
		}

		if ctx.GlobalString("log-format") == "json" {
			logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
		} else {
			logrus.SetFormatter(&logrus.TextFormatter{TimestampFormat: "2006-01-02 15:04:05", FullTimestamp: true})
		}

		switch ctx.GlobalString("log-level") {
		case "debug":
			logrus.SetLevel(logrus.DebugLevel)
		case "warning":
			logrus.SetLevel(logrus.WarnLevel)
		case "error":
			logrus.SetLevel(logrus.ErrorLevel)
		case "fatal":
			logrus.SetLevel(logrus.FatalLevel)
		default:
			logrus.SetLevel(logrus.InfoLevel)
		}

		return nil
	}

	app.Action = func(ctx *cli.Context) error {
		logrus.Info("Initiating boxd ...")

		if controlPath, index, ok := boss.CrewEnvOrDefault(); ok {
			return runCrew(ctx, controlPath, index)
		}
		if ctx.GlobalInt("crew-count") > 0 {
			path := ctx.GlobalString("socket")
			if path == "" {
				return fmt.Errorf("--socket is required with --crew-count")
			}
			return runBoss(ctx, path)
		}
		return runStandalone(ctx)
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
