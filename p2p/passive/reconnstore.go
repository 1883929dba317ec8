package passive

import (
	"pvnode/db"
	"pvnode/p2p"

	"halftwo/mangos/vbs"
	"halftwo/mangos/xerr"
)

// database key
var _reconnKey = []byte("ReconnAddrsKey")

// ReconnAddr is the persisted record of one reconnect-ready address.
type ReconnAddr struct {
	Addr        *p2p.NetAddress
	CreatedTime int64
	LastSeen    int64
	Successes   uint64
}

// ReconnStore keeps a snapshot of the reconn set in a key-value
// database so the node can prioritize re-connections across restarts.
// The whole map is written under a single key, like the address file.
type ReconnStore struct {
	kvdb db.KvDb
}

func NewReconnStore(kvdb db.KvDb) *ReconnStore {
	return &ReconnStore{kvdb: kvdb}
}

func (st *ReconnStore) Save(addrs map[string]*ReconnAddr) error {
	bz, err := vbs.Marshal(addrs)
	if err != nil {
		return xerr.Trace(err, "Could not marshal reconn addresses")
	}
	return st.kvdb.Put(_reconnKey, bz)
}

// Load returns an empty map when nothing was stored yet.
func (st *ReconnStore) Load() (map[string]*ReconnAddr, error) {
	addrs := make(map[string]*ReconnAddr)

	ok, err := st.kvdb.Has(_reconnKey)
	if err != nil || !ok {
		return addrs, err
	}

	bz, err := st.kvdb.Get(_reconnKey)
	if err != nil {
		return addrs, err
	}

	if err := vbs.Unmarshal(bz, &addrs); err != nil {
		return nil, xerr.Trace(err, "Could not unmarshal reconn addresses")
	}
	return addrs, nil
}

// Sync replaces the stored snapshot with the given reconn entries,
// keeping the CreatedTime of addresses that were already stored.
func (st *ReconnStore) Sync(entries []*AddrEntry, now int64) error {
	old, err := st.Load()
	if err != nil {
		return err
	}

	addrs := make(map[string]*ReconnAddr, len(entries))
	for _, e := range entries {
		key := e.Key()
		created := now
		if prev, ok := old[key]; ok {
			created = prev.CreatedTime
		}
		addrs[key] = &ReconnAddr{
			Addr:        e.Addr,
			CreatedTime: created,
			LastSeen:    e.LastSuccess,
			Successes:   e.Successes,
		}
	}
	return st.Save(addrs)
}
