package peer

import (
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// UXDPeer is a Peer over a Unix-domain datagram socket (spec.md
// §4.8/§6): dst is a filesystem path instead of a host/port pair, but
// semantics are otherwise identical to UDPPeer.
type UXDPeer struct {
	path  string
	umask int

	conn    *net.UnixConn
	recvBuf []byte
}

// UXDOption configures a UXDPeer at construction.
type UXDOption func(*UXDPeer)

// WithUmask sets the umask applied while the socket file is created.
// Default is 0o077 (spec.md §6).
func WithUmask(mask int) UXDOption { return func(p *UXDPeer) { p.umask = mask } }

// NewUXDPeer builds a UXDPeer bound to the filesystem path on Open.
func NewUXDPeer(path string, opts ...UXDOption) *UXDPeer {
	p := &UXDPeer{path: path, umask: 0o077, recvBuf: make([]byte, MaxDatagram)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Path returns the bound socket path, for publishing to crew
// processes (spec.md §4.9).
func (p *UXDPeer) Path() string { return p.path }

// Open unlinks any stale socket file left by a prior, uncleanly
// terminated run, then binds under the configured umask.
func (p *UXDPeer) Open() error {
	if _, err := os.Stat(p.path); err == nil {
		if err := os.Remove(p.path); err != nil {
			return fmt.Errorf("peer: unlink stale socket %s: %w", p.path, err)
		}
	}

	old := unix.Umask(p.umask)
	defer unix.Umask(old)

	addr, err := net.ResolveUnixAddr("unixgram", p.path)
	if err != nil {
		return fmt.Errorf("peer: resolve %s: %w", p.path, err)
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return fmt.Errorf("peer: listen %s: %w", p.path, err)
	}
	p.conn = conn
	return nil
}

// Reopen closes and rebinds the socket, unlinking the path again.
func (p *UXDPeer) Reopen() error {
	p.Close()
	return p.Open()
}

// Close releases the socket and unlinks its path. Safe to call more
// than once.
func (p *UXDPeer) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	os.Remove(p.path)
	return err
}

// Send transmits data to the UXD path dst.
func (p *UXDPeer) Send(data []byte, dst string) (int, error) {
	if p.conn == nil {
		return 0, ErrClosed
	}
	addr, err := net.ResolveUnixAddr("unixgram", dst)
	if err != nil {
		return 0, fmt.Errorf("peer: resolve dst %s: %w", dst, err)
	}
	p.conn.SetWriteDeadline(time.Now().Add(time.Millisecond))
	n, err := p.conn.WriteToUnix(data, addr)
	if err != nil {
		if isTimeout(err) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Receive returns the next queued datagram, or (nil, "", nil) if none
// is ready. The source is the sending peer's bound path, when known.
func (p *UXDPeer) Receive() ([]byte, string, error) {
	if p.conn == nil {
		return nil, "", ErrClosed
	}
	p.conn.SetReadDeadline(time.Now())
	n, addr, err := p.conn.ReadFromUnix(p.recvBuf)
	if err != nil {
		if isTimeout(err) {
			return nil, "", nil
		}
		return nil, "", err
	}
	out := make([]byte, n)
	copy(out, p.recvBuf[:n])
	src := ""
	if addr != nil {
		src = addr.Name
	}
	return out, src, nil
}
