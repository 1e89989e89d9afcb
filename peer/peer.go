// Package peer implements the non-blocking datagram endpoints
// (spec.md §4.8) that memo.Memoer ships grams over: UDP and Unix
// domain (UXD) sockets behind one shared Peer contract.
package peer

import "errors"

// ErrClosed is returned by Send/Receive once the Peer has been closed.
var ErrClosed = errors.New("peer: closed")

// Peer is a non-blocking datagram endpoint. Send is best-effort and
// returns the number of bytes the kernel actually accepted (0 means
// back-pressure, not an error). Receive returns (nil, "", nil) when
// nothing is queued.
type Peer interface {
	Open() error
	Reopen() error
	Close() error
	Send(data []byte, dst string) (int, error)
	Receive() ([]byte, string, error)
}
