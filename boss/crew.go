package boss

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/tymebox/tymebox/doer"
	"github.com/tymebox/tymebox/memo"
	"github.com/tymebox/tymebox/peer"
)

// CrewDoer is the crew-side counterpart of BossDoer: it runs its own
// Doist (spec.md §4.9's "CrewDoer runs its own scheduler"), driving
// whatever Doers the caller supplies alongside a Memoer bound to this
// crew member's own UXD path. It exits its Doist when the boss's
// ShutdownMemo arrives, or when the Doist's own limit is reached.
type CrewDoer struct {
	Index       int
	ControlPath string // the boss's address, where replies would go
	OwnPath     string // this crew member's own listening address

	Doist  *doer.Doist
	Memoer *memo.Memoer
	Peer   peer.Peer

	log *logrus.Entry
}

// CrewEnvOrDefault reads BOXD_CREW_PATH/BOXD_CREW_INDEX from the
// environment, as published by a BossDoer's Enter. ok is false if
// either variable is absent or malformed, meaning this process was not
// launched as crew.
func CrewEnvOrDefault() (controlPath string, index int, ok bool) {
	controlPath = os.Getenv(EnvCrewPath)
	if controlPath == "" {
		return "", 0, false
	}
	idx, err := strconv.Atoi(os.Getenv(EnvCrewIndex))
	if err != nil {
		return "", 0, false
	}
	return controlPath, idx, true
}

// NewCrewDoer builds a CrewDoer bound to its own UXD path, derived
// from controlPath/index by CrewPath, as BossDoer does, wiring
// up a Memoer over a UXDPeer and a Doist to drive it plus any other
// Doers the caller later adds via Ready.
func NewCrewDoer(controlPath string, index int, tock float64, opts ...CrewOption) (*CrewDoer, error) {
	cd := &CrewDoer{
		Index:       index,
		ControlPath: controlPath,
		OwnPath:     CrewPath(controlPath, index),
		log:         logrus.WithField("doer", "crew").WithField("index", index),
	}
	for _, opt := range opts {
		opt(cd)
	}

	if cd.Peer == nil {
		cd.Peer = peer.NewUXDPeer(cd.OwnPath)
	}
	if err := cd.Peer.Open(); err != nil {
		return nil, err
	}

	if cd.Memoer == nil {
		cd.Memoer = memo.NewMemoer(cd.Peer, peer.MaxDatagram-1, memo.WithMemoerLogger(cd.log))
	}
	cd.Memoer.OnDeliver = cd.onDeliver

	if cd.Doist == nil {
		cd.Doist = doer.New(tock, doer.WithLogger(cd.log))
	}

	return cd, nil
}

// CrewOption configures a CrewDoer at construction, before its Peer,
// Memoer and Doist defaults are filled in.
type CrewOption func(*CrewDoer)

// WithCrewPeer supplies a pre-built Peer instead of the default
// UXDPeer bound to the derived OwnPath.
func WithCrewPeer(p peer.Peer) CrewOption { return func(cd *CrewDoer) { cd.Peer = p } }

// WithCrewMemoer supplies a pre-built Memoer instead of constructing
// one over Peer.
func WithCrewMemoer(m *memo.Memoer) CrewOption { return func(cd *CrewDoer) { cd.Memoer = m } }

// WithCrewLogger attaches a logger.
func WithCrewLogger(log *logrus.Entry) CrewOption { return func(cd *CrewDoer) { cd.log = log } }

func (cd *CrewDoer) onDeliver(d memo.Delivered) {
	if string(d.Memo) == ShutdownMemo {
		cd.log.Info("received shutdown memo from boss")
		cd.Doist.Close()
		return
	}
	cd.log.WithField("memo", string(d.Memo)).Warn("crew received unrecognized memo")
}

// Run readies extra alongside the Memoer, then drives the Doist until
// the Doist's configured limit is reached or the boss's shutdown memo
// triggers Doist.Close; the Memoer never completes on its own, so the
// loop does not end merely because the extra Doers finish. It blocks
// until the Doist's Do loop returns.
func (cd *CrewDoer) Run(extra ...doer.Doer) {
	all := append([]doer.Doer{cd.Memoer}, extra...)
	cd.Doist.Do(all)
}

// Close releases the crew's Peer. Call after Run returns.
func (cd *CrewDoer) Close() error {
	return cd.Peer.Close()
}
