package peer

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// UDPPeer is a Peer over a UDP socket (spec.md §4.8/§6), grounded on
// original_source/src/hio/core/udp/udping.py's reopen/bind/bufsize
// handling.
type UDPPeer struct {
	addr      string
	bufsize   int
	broadcast bool

	conn    *net.UDPConn
	recvBuf []byte
}

// UDPOption configures a UDPPeer at construction.
type UDPOption func(*UDPPeer)

// WithBufsize raises SO_SNDBUF/SO_RCVBUF to n if the kernel default is
// smaller (spec.md §6).
func WithBufsize(n int) UDPOption { return func(p *UDPPeer) { p.bufsize = n } }

// WithBroadcast enables SO_BROADCAST on open (spec.md §6).
func WithBroadcast(b bool) UDPOption { return func(p *UDPPeer) { p.broadcast = b } }

// NewUDPPeer builds a UDPPeer bound to addr ("host:port") on Open.
func NewUDPPeer(addr string, opts ...UDPOption) *UDPPeer {
	p := &UDPPeer{addr: addr, recvBuf: make([]byte, MaxDatagram)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// MaxDatagram is the receive buffer size allocated per UDPPeer/UXDPeer,
// large enough for any gram under MaxGramSize (memo.MaxGramSize).
const MaxDatagram = 1 << 16

// Open binds a new socket on every call. Call it again after Close to
// rebind, or use Reopen, which does both.
func (p *UDPPeer) Open() error {
	laddr, err := net.ResolveUDPAddr("udp", p.addr)
	if err != nil {
		return fmt.Errorf("peer: resolve %s: %w", p.addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("peer: listen %s: %w", p.addr, err)
	}
	p.conn = conn
	if err := p.applySockopts(); err != nil {
		conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

func (p *UDPPeer) applySockopts() error {
	if p.bufsize == 0 && !p.broadcast {
		return nil
	}
	raw, err := p.conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("peer: syscall conn: %w", err)
	}
	var sockErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		if p.bufsize > 0 {
			sockErr = raiseBufIfSmaller(int(fd), unix.SO_SNDBUF, p.bufsize)
			if sockErr == nil {
				sockErr = raiseBufIfSmaller(int(fd), unix.SO_RCVBUF, p.bufsize)
			}
		}
		if sockErr == nil && p.broadcast {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
		}
	})
	if ctrlErr != nil {
		return fmt.Errorf("peer: sockopt control: %w", ctrlErr)
	}
	return sockErr
}

func raiseBufIfSmaller(fd, opt, want int) error {
	cur, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, opt)
	if err == nil && cur >= want {
		return nil
	}
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, opt, want)
}

// Reopen closes and rebinds the socket.
func (p *UDPPeer) Reopen() error {
	p.Close()
	return p.Open()
}

// Close releases the socket. Safe to call more than once.
func (p *UDPPeer) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// Send transmits data to dst ("host:port"). A write-deadline timeout
// is treated as back-pressure (0, nil), not an error.
func (p *UDPPeer) Send(data []byte, dst string) (int, error) {
	if p.conn == nil {
		return 0, ErrClosed
	}
	addr, err := net.ResolveUDPAddr("udp", dst)
	if err != nil {
		return 0, fmt.Errorf("peer: resolve dst %s: %w", dst, err)
	}
	p.conn.SetWriteDeadline(time.Now().Add(time.Millisecond))
	n, err := p.conn.WriteToUDP(data, addr)
	if err != nil {
		if isTimeout(err) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Receive returns the next queued datagram, or (nil, "", nil) if none
// is ready.
func (p *UDPPeer) Receive() ([]byte, string, error) {
	if p.conn == nil {
		return nil, "", ErrClosed
	}
	p.conn.SetReadDeadline(time.Now())
	n, addr, err := p.conn.ReadFromUDP(p.recvBuf)
	if err != nil {
		if isTimeout(err) {
			return nil, "", nil
		}
		return nil, "", err
	}
	out := make([]byte, n)
	copy(out, p.recvBuf[:n])
	return out, addr.String(), nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
