package passive

import (
	"pvnode/p2p"

	"fmt"

	"halftwo/mangos/vbs"
	"halftwo/mangos/xerr"
)

const snapshotVersion = int32(1)

// AddrWire is the serialized form of one AddrEntry. The field order is
// part of the wire contract; changing it breaks compatibility with
// files written by older versions.
type AddrWire struct {
	Addr        *p2p.NetAddress
	LastTry     int64
	Successes   uint64
	InReconn    bool
	Source      *p2p.NetAddress
	Attempts    int32
	LastSuccess int64
}

// Snapshot is a consistent copy of the manager's address table, safe to
// serialize outside the manager lock.
type Snapshot struct {
	Version int32
	Addrs   map[string]*AddrWire
}

// Snapshot copies the address table under the lock and returns it.
// Serialization of the result never blocks concurrent operations.
func (am *AddrManager) Snapshot() *Snapshot {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	s := &Snapshot{
		Version: snapshotVersion,
		Addrs:   make(map[string]*AddrWire, len(am.addrMap)),
	}
	for key, e := range am.addrMap {
		s.Addrs[key] = &AddrWire{
			Addr:        e.Addr.Copy(),
			LastTry:     e.LastTry,
			Successes:   e.Successes,
			InReconn:    e.InReconn,
			Source:      e.Source.Copy(),
			Attempts:    e.Attempts,
			LastSuccess: e.LastSuccess,
		}
	}
	return s
}

// Restore replaces the manager's address table with the snapshot's
// entries. The caller must call MakeContainers before any sampling or
// membership operation.
func (am *AddrManager) Restore(s *Snapshot) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	am.clear()
	for key, w := range s.Addrs {
		am.addrMap[key] = &AddrEntry{
			Addr:        w.Addr,
			LastSuccess: w.LastSuccess,
			LastTry:     w.LastTry,
			Successes:   w.Successes,
			Attempts:    w.Attempts,
			InReconn:    w.InReconn,
			Source:      w.Source,
			randomPos:   -1,
		}
	}
}

func (s *Snapshot) Marshal() ([]byte, error) {
	bz, err := vbs.Marshal(s)
	if err != nil {
		return nil, xerr.Trace(err, "Could not marshal address snapshot")
	}
	return bz, nil
}

func UnmarshalSnapshot(bz []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := vbs.Unmarshal(bz, s); err != nil {
		return nil, xerr.Trace(err, "Could not unmarshal address snapshot")
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("Unsupported address snapshot version %d", s.Version)
	}
	if s.Addrs == nil {
		s.Addrs = make(map[string]*AddrWire)
	}
	return s, nil
}
