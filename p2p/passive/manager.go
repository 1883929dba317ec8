package passive

import (
	"pvnode/p2p"
	"pvnode/util"
	"pvnode/util/log"

	"math/rand"
	"sync"
	"time"
)

// AddrManager - concurrency safe passive peer address manager.
//
// It is designed to replace the bucketed address book, which is more
// complicated and doesn't suit our needs. It is more lightweight and
// keeps two kinds of addresses:
//  1. New addresses: haven't been connected to before, or unseen for a
//     long time
//  2. Reconn addresses: have been connected to recently and are ready
//     to be reconnected
//
// A single mutex guards every container and every entry reachable
// through them. No operation blocks on I/O while holding it; persistence
// works on snapshots taken under the lock and serialized outside it.
type AddrManager struct {
	mtx sync.Mutex

	// injected seams, swappable for deterministic tests
	rng *rand.Rand
	now func() int64

	terrible    TerriblePolicy
	onDiscovery func(addr, src *p2p.NetAddress)

	// key is NetAddress.String(); addrMap owns the entries
	addrMap   map[string]*AddrEntry
	newSet    map[string]struct{}
	reconnSet map[string]struct{}

	// dense array of keys enabling uniform random draw and O(1)
	// swap-remove; every entry's randomPos mirrors its slot here
	vRandom []string

	autoEvict    bool
	attemptLimit int32

	logger log.Logger
}

// NewAddrManager returns an empty manager with the default policies:
// wall-clock time, OS-seeded randomness, no eviction, nothing terrible.
func NewAddrManager() *AddrManager {
	am := &AddrManager{
		rng:          util.NewRand(),
		now:          func() int64 { return time.Now().Unix() },
		terrible:     NeverTerrible,
		attemptLimit: defaultAttemptLimit,
		logger:       log.NewNopLogger(),
	}
	am.clear()
	return am
}

func (am *AddrManager) SetLogger(l log.Logger) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.logger = l
}

// SetClock replaces the time source used by Add's online heuristic.
func (am *AddrManager) SetClock(now func() int64) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.now = now
}

func (am *AddrManager) clock() func() int64 {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	return am.now
}

// SetRand replaces the random source used by GetAddr.
func (am *AddrManager) SetRand(rng *rand.Rand) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.rng = rng
}

// SetTerriblePolicy replaces the staleness predicate consulted by
// GetAddr. The policy must be pure: no side effects, no locking.
func (am *AddrManager) SetTerriblePolicy(p TerriblePolicy) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.terrible = p
}

// SetDiscoveryHook installs a fire-and-forget callback invoked (under
// the manager lock) whenever a brand-new address is created.
func (am *AddrManager) SetDiscoveryHook(cb func(addr, src *p2p.NetAddress)) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.onDiscovery = cb
}

// SetAutoEvict enables dropping an entry once its consecutive failures
// exceed the attempt limit. Disabled by default.
func (am *AddrManager) SetAutoEvict(on bool, limit int32) {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.autoEvict = on
	if limit > 0 {
		am.attemptLimit = limit
	}
}

//----------------------------------------------------------
// table primitives, caller must hold am.mtx

func (am *AddrManager) find(key string) *AddrEntry {
	return am.addrMap[key]
}

func (am *AddrManager) create(addr, src *p2p.NetAddress) *AddrEntry {
	key := addr.String()
	util.Assert(am.addrMap[key] == nil)

	e := newAddrEntry(addr, src)
	e.randomPos = len(am.vRandom)
	am.addrMap[key] = e
	am.vRandom = append(am.vRandom, key)
	am.newSet[key] = struct{}{}
	return e
}

func (am *AddrManager) remove(key string) {
	e := am.addrMap[key]
	util.Assert(e != nil)

	am.swapRandom(e.randomPos, len(am.vRandom)-1)
	am.vRandom = am.vRandom[:len(am.vRandom)-1]
	delete(am.addrMap, key)

	if e.InReconn {
		delete(am.reconnSet, key)
	} else {
		delete(am.newSet, key)
	}
	am.logger.Info("Passive: address unreachable", "addr", e.Addr)
}

// swapRandom exchanges two vRandom slots and keeps both entries'
// randomPos in sync. It is the single primitive both remove and GetAddr
// reorder the array with.
func (am *AddrManager) swapRandom(pos1, pos2 int) {
	if pos1 == pos2 {
		return
	}

	util.Assert(pos1 < len(am.vRandom) && pos2 < len(am.vRandom))

	key1 := am.vRandom[pos1]
	key2 := am.vRandom[pos2]

	am.addrMap[key1].randomPos = pos2
	am.addrMap[key2].randomPos = pos1

	am.vRandom[pos1] = key2
	am.vRandom[pos2] = key1
}

//----------------------------------------------------------

func (am *AddrManager) add(addr, src *p2p.NetAddress, timePenalty int64) bool {
	if !addr.Routable() {
		return false
	}

	// do not set a penalty for a source's self-announcement
	if addr.Equal(src) {
		timePenalty = 0
	}

	e := am.find(addr.String())
	if e != nil {
		// periodically update the timestamp
		currentlyOnline := am.now()-addr.Timestamp < currentlyOnlineWindow
		updateInterval := int64(offlineUpdateInterval)
		if currentlyOnline {
			updateInterval = onlineUpdateInterval
		}
		if addr.Timestamp != 0 && (e.Addr.Timestamp == 0 || e.Addr.Timestamp < addr.Timestamp-updateInterval-timePenalty) {
			e.Addr.Timestamp = max64(0, addr.Timestamp-timePenalty)
		}

		// add services
		e.Addr.Services |= addr.Services

		// an existing entry carries no new information
		return false
	}

	e = am.create(addr, src)
	e.Addr.Timestamp = max64(0, e.Addr.Timestamp-timePenalty)

	if am.onDiscovery != nil {
		am.onDiscovery(e.Addr, e.Source)
	}
	return true
}

// Add records a single gossiped address, creating a "new" entry if the
// address is routable and unknown. timePenalty discounts the reported
// freshness of addresses relayed by low-trust sources; it is ignored
// when addr announces itself. Returns true iff a new entry was created.
func (am *AddrManager) Add(addr, src *p2p.NetAddress, timePenalty int64) bool {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	ok := am.add(addr, src, timePenalty)
	if ok {
		am.logger.Debug("Passive: added address", "addr", addr, "src", src)
	}
	return ok
}

// AddMany applies the single-address rule to every element of a batch
// sharing one source. Returns true iff at least one new entry was
// created.
func (am *AddrManager) AddMany(addrs []*p2p.NetAddress, src *p2p.NetAddress, timePenalty int64) bool {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	nAdd := 0
	for _, addr := range addrs {
		if am.add(addr, src, timePenalty) {
			nAdd++
		}
	}

	if nAdd > 0 {
		am.logger.Debug("Passive: added addresses", "count", nAdd, "src", src)
	}
	return nAdd > 0
}

// Good marks addr as confirmed reachable at nTime and moves it into the
// reconn set. The move is one-directional: nothing transitions an entry
// back to "new". Unknown or identity-mismatched addresses are ignored.
func (am *AddrManager) Good(addr *p2p.NetAddress, nTime int64) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	e := am.find(addr.String())
	if e == nil {
		return
	}

	// check whether we are talking about the exact same address
	// (including the port)
	if !e.Addr.Equal(addr) {
		return
	}

	e.LastSuccess = nTime
	e.LastTry = nTime
	e.Attempts = 0
	e.Successes++
	// Timestamp is not updated here, to avoid leaking information
	// about currently-connected peers.

	if e.InReconn {
		return
	}

	key := e.Key()
	e.InReconn = true
	am.reconnSet[key] = struct{}{}
	delete(am.newSet, key)
	am.logger.Info("Passive: added address to reconn", "addr", e.Addr)
}

// Attempt records a connection attempt against addr at nTime.
// countFailure increments the consecutive-failure counter; the entry is
// only dropped over the limit when eviction was explicitly enabled.
func (am *AddrManager) Attempt(addr *p2p.NetAddress, countFailure bool, nTime int64) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	e := am.find(addr.String())
	if e == nil {
		return
	}

	if !e.Addr.Equal(addr) {
		return
	}

	e.LastTry = nTime
	if countFailure {
		e.Attempts++

		if am.autoEvict && e.Attempts > am.attemptLimit {
			am.remove(e.Key())
		}
	}
}

// Connected coalesces frequent "still connected" signals into
// infrequent timestamp refreshes.
func (am *AddrManager) Connected(addr *p2p.NetAddress, nTime int64) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	e := am.find(addr.String())
	if e == nil {
		return
	}

	if !e.Addr.Equal(addr) {
		return
	}

	if nTime-e.Addr.Timestamp > connectedUpdateInterval {
		e.Addr.Timestamp = nTime
	}
}

// SetServices overwrites the service bits of addr. Unlike Add this is a
// replace, not an OR.
func (am *AddrManager) SetServices(addr *p2p.NetAddress, services p2p.ServiceFlags) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	e := am.find(addr.String())
	if e == nil {
		return
	}

	if !e.Addr.Equal(addr) {
		return
	}

	e.Addr.Services = services
}

// GetAddr returns a bunch of addresses, selected at random (used for
// getaddr). It runs a partial Fisher-Yates shuffle over vRandom, fused
// with the terrible-filter, and stops once min(23%, 2500) addresses
// were gathered. The reshuffled array is left behind on purpose.
func (am *AddrManager) GetAddr() []*p2p.NetAddress {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	nNodes := getAddrMaxPercent * len(am.vRandom) / 100
	if nNodes > getAddrMax {
		nNodes = getAddrMax
	}

	now := am.now()
	var addrs []*p2p.NetAddress
	for n := 0; n < len(am.vRandom); n++ {
		if len(addrs) >= nNodes {
			break
		}

		rndPos := am.rng.Intn(len(am.vRandom)-n) + n
		am.swapRandom(n, rndPos)

		e := am.addrMap[am.vRandom[n]]
		if !am.terrible(e, now) {
			addrs = append(addrs, e.Addr.Copy())
		}
	}
	return addrs
}

// GetReconns returns a snapshot copy of every reconn address.
func (am *AddrManager) GetReconns() []*AddrEntry {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	var entries []*AddrEntry
	for key := range am.reconnSet {
		e := am.addrMap[key]
		// Double check
		if e == nil || !e.InReconn {
			am.logger.Error("Passive: reconn set out of sync", "key", key)
			continue
		}
		entries = append(entries, e.clone())
	}
	return entries
}

// GetNew returns a snapshot copy of every "new" address.
func (am *AddrManager) GetNew() []*AddrEntry {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	var entries []*AddrEntry
	for key := range am.newSet {
		e := am.addrMap[key]
		// Double check
		if e == nil || e.InReconn {
			am.logger.Error("Passive: new set out of sync", "key", key)
			continue
		}
		entries = append(entries, e.clone())
	}
	return entries
}

// MakeContainers rebuilds vRandom and the two membership sets from a
// freshly deserialized addrMap. It must be called exactly once after a
// bulk load, before any other operation.
func (am *AddrManager) MakeContainers() {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	am.vRandom = am.vRandom[:0]
	am.newSet = make(map[string]struct{})
	am.reconnSet = make(map[string]struct{})

	for key, e := range am.addrMap {
		e.randomPos = len(am.vRandom)
		am.vRandom = append(am.vRandom, key)
		if e.InReconn {
			am.reconnSet[key] = struct{}{}
		} else {
			am.newSet[key] = struct{}{}
		}
		am.logger.Debug("Passive: loaded address", "addr", e.Addr)
	}
}

// Clear returns the manager to its just-constructed state.
func (am *AddrManager) Clear() {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	am.clear()
}

func (am *AddrManager) clear() {
	am.addrMap = make(map[string]*AddrEntry)
	am.newSet = make(map[string]struct{})
	am.reconnSet = make(map[string]struct{})
	am.vRandom = nil
}

func (am *AddrManager) Size() int {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	return len(am.addrMap)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
