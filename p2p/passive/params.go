package passive

import "time"

// % of total addresses known returned by GetAddr.
const getAddrMaxPercent = 23

// max addresses returned by GetAddr.
const getAddrMax = 2500

// consecutive failures after which an entry may be dropped.
// Only consulted when eviction is enabled, see AddrManager.SetAutoEvict.
const defaultAttemptLimit = 2

// how long a gossiped timestamp keeps an address counted as online.
const currentlyOnlineWindow = 24 * 60 * 60

// minimum advance before Add refreshes the timestamp of an online address.
const onlineUpdateInterval = 60 * 60

// minimum advance before Add refreshes the timestamp of an offline address.
const offlineUpdateInterval = 24 * 60 * 60

// minimum gap between timestamp refreshes for a currently-connected peer.
const connectedUpdateInterval = 20 * 60

// interval used to dump the manager state to disk for future use.
const dumpAddressInterval = time.Minute * 2
