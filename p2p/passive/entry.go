package passive

import (
	"pvnode/p2p"
)

// AddrEntry tracks the reconnection statistics of one known address.
// It belongs to exactly one of the manager's two partitions: "new"
// (never confirmed reachable, or not recently) when InReconn is false,
// "reconn" (confirmed reachable, queued for re-connection) when true.
type AddrEntry struct {
	// the address itself; its Timestamp and Services are updated in place
	Addr *p2p.NetAddress

	// last successful connection time, 0 = never
	LastSuccess int64

	// last connection attempt of any outcome
	LastTry int64

	// number of successful re-connections
	Successes uint64

	// connection attempts since the last successful one
	Attempts int32

	InReconn bool

	// where we first heard about the address; never mutated after creation
	Source *p2p.NetAddress

	// position in vRandom
	randomPos int
}

func newAddrEntry(addr, src *p2p.NetAddress) *AddrEntry {
	return &AddrEntry{
		Addr:      addr.Copy(),
		Source:    src.Copy(),
		randomPos: -1,
	}
}

// Key returns the string the manager indexes this entry under.
func (e *AddrEntry) Key() string {
	return e.Addr.String()
}

func (e *AddrEntry) clone() *AddrEntry {
	return &AddrEntry{
		Addr:        e.Addr.Copy(),
		LastSuccess: e.LastSuccess,
		LastTry:     e.LastTry,
		Successes:   e.Successes,
		Attempts:    e.Attempts,
		InReconn:    e.InReconn,
		Source:      e.Source.Copy(),
		randomPos:   e.randomPos,
	}
}

// TerriblePolicy decides whether the statistics about an entry are bad
// enough that sampling should skip it and eviction may purge it.
type TerriblePolicy func(e *AddrEntry, now int64) bool

// NeverTerrible keeps every entry. The criteria can be decided later;
// install a replacement with AddrManager.SetTerriblePolicy.
func NeverTerrible(e *AddrEntry, now int64) bool {
	return false
}
