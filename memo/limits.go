// Package memo implements the fragmentation/reassembly transport
// layered over a datagram Peer: a Memoer splits an outgoing memo into
// one or more grams bounded by a peer's MTU, and reassembles inbound
// grams back into memos (spec.md §4.7).
package memo

// Limits on the wire, per spec.md §4.7.
const (
	MaxMemoSize  = 1<<32 - 1 // bytes
	MaxGramSize  = 1<<16 - 1 // bytes
	MaxGramCount = 1<<24 - 1 // grams per memo
)
