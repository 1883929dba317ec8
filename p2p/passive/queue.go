package passive

import (
	"gopkg.in/karalabe/cookiejar.v2/collections/prque"
)

// PickReconns returns up to n reconnect-ready addresses, most recently
// successful first. The connection scheduler dials these before asking
// GetAddr for unproven ones.
func (am *AddrManager) PickReconns(n int) []*AddrEntry {
	if n <= 0 {
		return nil
	}

	candidates := am.GetReconns()
	if len(candidates) == 0 {
		return nil
	}

	// The queue's float32 priority cannot represent whole seconds at
	// unix-timestamp magnitude. Rebase on the batch minimum so the
	// mantissa covers the actual spread.
	base := candidates[0].LastSuccess
	for _, e := range candidates[1:] {
		if e.LastSuccess < base {
			base = e.LastSuccess
		}
	}

	q := prque.New()
	for _, e := range candidates {
		q.Push(e, float32(e.LastSuccess-base))
	}

	var entries []*AddrEntry
	for !q.Empty() && len(entries) < n {
		v, _ := q.Pop()
		entries = append(entries, v.(*AddrEntry))
	}
	return entries
}
