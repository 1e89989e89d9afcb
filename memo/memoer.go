package memo

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tymebox/tymebox/doer"
)

// Peer is the minimal datagram contract Memoer needs (spec.md §4.8).
// Both peer.UDPPeer and peer.UXDPeer satisfy this without memo
// importing the peer package directly.
type Peer interface {
	Send(data []byte, dst string) (int, error)
	Receive() ([]byte, string, error)
}

// Delivered is one fully-reassembled memo handed to the consumer.
type Delivered struct {
	Memo   []byte
	Source string
	Vid    string
}

type txMemo struct {
	memo []byte
	dest string
	vid  string
	sig  string
}

type txGram struct {
	dest string
	data []byte
	sent int
}

type reassembly struct {
	source    string
	vid       string
	cntKnown  bool
	cnt       uint32
	fragments map[uint32][]byte
	seen      bool
	firstSeen float64
}

// Memoer is a Doer whose Recur drains outgoing memos into grams over a
// Peer and reassembles inbound grams into memos (spec.md §4.7). Its
// TX/RX pipeline split mirrors spec.md §4.7 exactly: serviceTxMemos →
// serviceTxGrams on the way out, serviceReceives → serviceRxGrams →
// serviceRxMemos on the way in.
type Memoer struct {
	doer.Base

	Peer     Peer
	GramSize int
	Curt     bool
	Verific  bool
	Tymeout  float64 // 0 disables reassembly eviction

	// OnDeliver, if set, is called for every reassembled memo in
	// serviceRxMemos instead of queueing it for Receive.
	OnDeliver func(Delivered)

	log *logrus.Entry

	txQueue []txMemo
	txGrams []txGram

	reasm   map[string]*reassembly
	rxQueue []Delivered
}

// NewMemoer builds a Memoer over peer, fragmenting to at most gramSize
// bytes per datagram.
func NewMemoer(peer Peer, gramSize int, opts ...MemoerOption) *Memoer {
	m := &Memoer{
		Base:     doer.NewBase(0),
		Peer:     peer,
		GramSize: gramSize,
		log:      logrus.WithField("doer", "memoer"),
		reasm:    make(map[string]*reassembly),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MemoerOption configures a Memoer at construction.
type MemoerOption func(*Memoer)

func WithCurt(curt bool) MemoerOption       { return func(m *Memoer) { m.Curt = curt } }
func WithVerific(verific bool) MemoerOption { return func(m *Memoer) { m.Verific = verific } }
func WithTymeout(tymeout float64) MemoerOption {
	return func(m *Memoer) { m.Tymeout = tymeout }
}
func WithMemoerLogger(log *logrus.Entry) MemoerOption {
	return func(m *Memoer) { m.log = log }
}

// Memoit enqueues a memo for transmission to dest. vid/sig are empty
// for Basic grams; supplying both produces Signed grams (spec.md
// §4.7's "Signed envelope"; the signature itself is computed
// externally, per spec.md §1's Non-goals).
func (m *Memoer) Memoit(memo []byte, dest string, vid, sig string) error {
	if len(memo) > MaxMemoSize {
		return ErrOversizeMemo
	}
	m.txQueue = append(m.txQueue, txMemo{memo: memo, dest: dest, vid: vid, sig: sig})
	return nil
}

// Recur runs one full TX+RX service cycle. A Memoer never completes on
// its own; it is driven until its owning Doist shuts it down.
func (m *Memoer) Recur(tyme float64) (bool, error) {
	m.service(tyme)
	return false, nil
}

func (m *Memoer) service(tyme float64) {
	m.serviceTxMemos()
	m.serviceTxGrams()
	m.serviceReceives()
	m.serviceRxGrams(tyme)
	m.serviceRxMemos()
	if m.Tymeout > 0 {
		m.evictExpired(tyme)
	}
}

func (m *Memoer) serviceTxMemos() {
	for _, item := range m.txQueue {
		grams, err := m.fragment(item)
		if err != nil {
			m.log.WithError(err).Warn("drop oversize memo")
			continue
		}
		for _, g := range grams {
			data, err := Encode(g, m.Curt)
			if err != nil {
				m.log.WithError(err).Warn("drop unencodable gram")
				continue
			}
			m.txGrams = append(m.txGrams, txGram{dest: item.dest, data: data})
		}
	}
	m.txQueue = m.txQueue[:0]
}

func (m *Memoer) fragment(item txMemo) ([]Gram, error) {
	signed := item.vid != ""
	mid, err := newMid()
	if err != nil {
		return nil, err
	}

	headerLen := HeaderLen
	if m.Curt {
		headerLen = curtHeaderLen
	}
	firstCap := m.GramSize - headerLen(signed, true)
	otherCap := m.GramSize - headerLen(signed, false)
	if firstCap <= 0 || (len(item.memo) > firstCap && otherCap <= 0) {
		return nil, ErrGramTooLarge
	}

	var chunks [][]byte
	remaining := item.memo
	if len(remaining) <= firstCap {
		chunks = append(chunks, remaining)
	} else {
		chunks = append(chunks, remaining[:firstCap])
		remaining = remaining[firstCap:]
		for len(remaining) > 0 {
			n := otherCap
			if n > len(remaining) {
				n = len(remaining)
			}
			chunks = append(chunks, remaining[:n])
			remaining = remaining[n:]
		}
	}
	if len(chunks) > MaxGramCount {
		return nil, ErrGramCountOverflow
	}

	grams := make([]Gram, len(chunks))
	for i, payload := range chunks {
		grams[i] = Gram{
			Signed:  signed,
			Mid:     mid,
			Vid:     item.vid,
			Num:     uint32(i),
			Cnt:     uint32(len(chunks)),
			First:   i == 0,
			Payload: payload,
			Sig:     item.sig,
		}
	}
	return grams, nil
}

func (m *Memoer) serviceTxGrams() {
	for len(m.txGrams) > 0 {
		g := &m.txGrams[0]
		n, err := m.Peer.Send(g.data[g.sent:], g.dest)
		if err != nil {
			m.log.WithError(err).Warn("drop gram on hard send error")
			m.txGrams = m.txGrams[1:]
			continue
		}
		g.sent += n
		if g.sent >= len(g.data) {
			m.txGrams = m.txGrams[1:]
			continue
		}
		// short write: keep the residue queued and retry next cycle
		return
	}
}

func (m *Memoer) serviceReceives() {
	for {
		data, source, err := m.Peer.Receive()
		if err != nil {
			m.log.WithError(err).Warn("peer receive error")
			return
		}
		if len(data) == 0 {
			return
		}
		g, err := Decode(data)
		if err != nil {
			m.log.WithError(err).Warn("drop malformed gram")
			continue
		}
		if m.Verific && !g.Signed {
			m.log.Warn("drop unsigned gram in verific mode")
			continue
		}
		m.absorb(g, source)
	}
}

func (m *Memoer) absorb(g Gram, source string) {
	r, ok := m.reasm[g.Mid]
	if !ok {
		r = &reassembly{source: source, vid: g.Vid, fragments: make(map[uint32][]byte)}
		m.reasm[g.Mid] = r
	}
	if r.source != source {
		m.log.Warn("drop gram from mismatched source")
		return
	}
	if r.cntKnown && g.Num >= r.cnt {
		m.log.Warn("drop gram with out-of-range num")
		return
	}
	if g.First {
		r.cntKnown = true
		r.cnt = g.Cnt
	}
	if _, dup := r.fragments[g.Num]; dup {
		return
	}
	r.fragments[g.Num] = g.Payload
}

func (m *Memoer) serviceRxGrams(tyme float64) {
	for mid, r := range m.reasm {
		if !r.seen {
			r.seen = true
			r.firstSeen = tyme
		}
		if !r.cntKnown || uint32(len(r.fragments)) < r.cnt {
			continue
		}
		memo := make([]byte, 0, r.cnt)
		for i := uint32(0); i < r.cnt; i++ {
			memo = append(memo, r.fragments[i]...)
		}
		m.rxQueue = append(m.rxQueue, Delivered{Memo: memo, Source: r.source, Vid: r.vid})
		delete(m.reasm, mid)
	}
}

func (m *Memoer) serviceRxMemos() {
	if m.OnDeliver == nil {
		return
	}
	for _, d := range m.rxQueue {
		m.OnDeliver(d)
	}
	m.rxQueue = m.rxQueue[:0]
}

// Receive pops one delivered memo when OnDeliver is not set. It
// returns ok=false if nothing is ready.
func (m *Memoer) Receive() (Delivered, bool) {
	if len(m.rxQueue) == 0 {
		return Delivered{}, false
	}
	d := m.rxQueue[0]
	m.rxQueue = m.rxQueue[1:]
	return d, true
}

func (m *Memoer) evictExpired(tyme float64) {
	var expired []string
	for mid, r := range m.reasm {
		if r.cntKnown && tyme-r.firstSeen > m.Tymeout {
			expired = append(expired, mid)
		}
	}
	sort.Strings(expired)
	for _, mid := range expired {
		m.log.WithField("mid", mid).Warn("evict expired partial memo")
		delete(m.reasm, mid)
	}
}

