// Package boss implements multi-process coordination (spec.md §4.9):
// a BossDoer spawns and monitors crew child processes, and a CrewDoer
// runs inside each child, talking back to the boss over a UXD Memoer
// channel.
package boss

import (
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tymebox/tymebox/doer"
	"github.com/tymebox/tymebox/memo"
)

// Environment variables a BossDoer publishes to each crew child,
// mirroring the teacher's os.Getpid()-keyed process bookkeeping in
// domain/process.go, re-purposed here to address raw child processes
// instead of container PID namespaces.
const (
	EnvCrewPath  = "BOXD_CREW_PATH"
	EnvCrewIndex = "BOXD_CREW_INDEX"
)

// ShutdownMemo is the payload BossDoer broadcasts to every live crew
// member on graceful shutdown.
const ShutdownMemo = "shutdown"

// CrewPath derives a crew member's own listening address from the
// boss's shared control path and the member's index. Both the boss
// (to address a shutdown memo) and the crew child (to bind its own
// Peer) compute this independently, so no registration handshake is
// needed.
func CrewPath(controlPath string, index int) string {
	return fmt.Sprintf("%s.%d", controlPath, index)
}

type crewExit struct {
	index int
	err   error
}

// BossDoer spawns Count copies of Command, monitors them to
// completion, and on graceful shutdown broadcasts ShutdownMemo to
// every still-live crew member before exiting. It completes (Recur
// returns true) once every child has exited on its own (spec.md:
// "BossDoer monitors children ... completes when all children have
// exited").
type BossDoer struct {
	doer.Base

	Command     string
	Args        []string
	Count       int
	ControlPath string
	Memoer      *memo.Memoer

	log *logrus.Entry

	cmds   map[int]*exec.Cmd
	live   map[int]bool
	exitCh chan crewExit
}

// NewBossDoer builds a BossDoer that will spawn count copies of
// command/args, each told where to reach the boss via ControlPath and
// which crew index it is.
func NewBossDoer(command string, args []string, count int, controlPath string, memoer *memo.Memoer, opts ...BossOption) *BossDoer {
	b := &BossDoer{
		Base:        doer.NewBase(0),
		Command:     command,
		Args:        args,
		Count:       count,
		ControlPath: controlPath,
		Memoer:      memoer,
		log:         logrus.WithField("doer", "boss"),
		cmds:        make(map[int]*exec.Cmd),
		live:        make(map[int]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.exitCh = make(chan crewExit, b.Count)
	return b
}

// BossOption configures a BossDoer at construction.
type BossOption func(*BossDoer)

// WithBossLogger attaches a logger.
func WithBossLogger(log *logrus.Entry) BossOption { return func(b *BossDoer) { b.log = log } }

// Enter spawns every crew child. A child that fails to start is
// logged and left out of the live set; Enter itself only fails if no
// child starts at all.
func (b *BossDoer) Enter() error {
	for i := 0; i < b.Count; i++ {
		cmd := exec.Command(b.Command, b.Args...)
		cmd.Env = append(os.Environ(),
			fmt.Sprintf("%s=%s", EnvCrewPath, b.ControlPath),
			fmt.Sprintf("%s=%d", EnvCrewIndex, i),
		)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Start(); err != nil {
			b.log.WithError(err).WithField("index", i).Warn("crew child failed to start")
			continue
		}

		b.cmds[i] = cmd
		b.live[i] = true

		index := i
		go func() {
			b.exitCh <- crewExit{index: index, err: cmd.Wait()}
		}()
	}

	if len(b.live) == 0 {
		return fmt.Errorf("boss: no crew child started")
	}
	return nil
}

// Recur services the shared Memoer (so shutdown broadcasts and any
// crew replies keep flowing), drains any child-exit notifications
// without blocking, and reports done once every crew member has
// exited. Folding the Memoer's service cycle in here, rather than
// running it as a sibling Doer, means BossDoer's own completion is
// what ends the owning Doist: a Memoer never completes on its own.
func (b *BossDoer) Recur(tyme float64) (bool, error) {
	if b.Memoer != nil {
		if _, err := b.Memoer.Recur(tyme); err != nil {
			return false, err
		}
	}

	for {
		select {
		case e := <-b.exitCh:
			delete(b.live, e.index)
			if e.err != nil {
				b.log.WithError(e.err).WithField("index", e.index).Warn("crew child exited with error")
			} else {
				b.log.WithField("index", e.index).Info("crew child exited")
			}
		default:
			return len(b.live) == 0, nil
		}
	}
}

// broadcastShutdown enqueues ShutdownMemo to every still-live crew
// member's derived path and runs one Memoer cycle immediately to flush
// it, since Close/Abort are one-shot calls with no further Recur to
// rely on.
func (b *BossDoer) broadcastShutdown() {
	if b.Memoer == nil {
		return
	}
	indices := make([]int, 0, len(b.live))
	for i := range b.live {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		dst := CrewPath(b.ControlPath, i)
		if err := b.Memoer.Memoit([]byte(ShutdownMemo), dst, "", ""); err != nil {
			b.log.WithError(err).WithField("index", i).Warn("failed to enqueue shutdown memo")
		}
	}
	if _, err := b.Memoer.Recur(0); err != nil {
		b.log.WithError(err).Warn("failed to flush shutdown memos")
	}
}

// Exit runs on normal completion (every child already exited); there
// is nothing left to shut down.
func (b *BossDoer) Exit() error { return nil }

// Close runs on external cancellation: broadcast shutdown to whatever
// crew members are still live.
func (b *BossDoer) Close() error {
	b.broadcastShutdown()
	return nil
}

// Abort broadcasts shutdown the same way Close does, then gives up.
func (b *BossDoer) Abort(reason error) error {
	b.log.WithError(reason).Warn("boss aborted")
	b.broadcastShutdown()
	return nil
}
