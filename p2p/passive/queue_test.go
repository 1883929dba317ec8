package passive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickReconnsOrder(t *testing.T) {
	am := newTestManager()
	src := makeSrc()

	// successes at distinct times, added out of order
	times := map[int]int64{
		1: testNow + 300,
		2: testNow + 100,
		3: testNow + 500,
		4: testNow + 200,
	}
	for i, nTime := range times {
		require.True(t, am.Add(makeAddr(i), src, 0))
		am.Good(makeAddr(i), nTime)
	}
	// this one stays in "new", it must not be picked
	require.True(t, am.Add(makeAddr(9), src, 0))

	entries := am.PickReconns(10)
	require.Len(t, entries, 4)

	assert.Equal(t, makeAddr(3).String(), entries[0].Key())
	assert.Equal(t, makeAddr(1).String(), entries[1].Key())
	assert.Equal(t, makeAddr(4).String(), entries[2].Key())
	assert.Equal(t, makeAddr(2).String(), entries[3].Key())
}

func TestPickReconnsLimit(t *testing.T) {
	am := newTestManager()
	src := makeSrc()
	for i := 0; i < 10; i++ {
		require.True(t, am.Add(makeAddr(i), src, 0))
		am.Good(makeAddr(i), testNow+int64(i))
	}

	entries := am.PickReconns(3)
	require.Len(t, entries, 3)

	// the three most recent successes
	assert.Equal(t, testNow+9, entries[0].LastSuccess)
	assert.Equal(t, testNow+8, entries[1].LastSuccess)
	assert.Equal(t, testNow+7, entries[2].LastSuccess)
}

func TestPickReconnsSecondGranularity(t *testing.T) {
	am := newTestManager()
	src := makeSrc()

	// successes one second apart at unix-timestamp magnitude; a naive
	// float32 priority collapses these to equal values
	for i := 0; i < 10; i++ {
		require.True(t, am.Add(makeAddr(i), src, 0))
		am.Good(makeAddr(i), testNow+int64(i))
	}

	entries := am.PickReconns(10)
	require.Len(t, entries, 10)
	for i := 1; i < len(entries); i++ {
		require.True(t, entries[i].LastSuccess <= entries[i-1].LastSuccess,
			"ordering violated at %d: %d before %d",
			i, entries[i-1].LastSuccess, entries[i].LastSuccess)
	}
	assert.Equal(t, testNow+9, entries[0].LastSuccess)
	assert.Equal(t, testNow, entries[9].LastSuccess)
}

func TestPickReconnsEmpty(t *testing.T) {
	am := newTestManager()
	assert.Empty(t, am.PickReconns(5))
	assert.Empty(t, am.PickReconns(0))
	assert.Empty(t, am.PickReconns(-1))
}
