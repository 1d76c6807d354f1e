package devices

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseList_TrimsAndDropsEmpty verifies segments are trimmed and empty
// ones are dropped while order is preserved.
func TestParseList_TrimsAndDropsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "a/b/c", []string{"a", "b", "c"}},
		{"whitespace around segments", " a /b/ /c ", []string{"a", "b", "c"}},
		{"single separator", "/", []string{}},
		{"empty input", "", []string{}},
		{"only whitespace", "   ", []string{}},
		{"trailing separator", "127.0.0.1:5555/", []string{"127.0.0.1:5555"}},
		{"internal whitespace preserved", "a b/c", []string{"a b", "c"}},
		{"duplicates kept", "x/x", []string{"x", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseList(tt.input))
		})
	}
}

// TestNewTable_DuplicatesAreIndependent verifies duplicate addresses get
// their own records with independent flags.
func TestNewTable_DuplicatesAreIndependent(t *testing.T) {
	table := NewTable("x/x")
	require.Equal(t, 2, table.Len())

	first, second := table.Devices()[0], table.Devices()[1]
	assert.Equal(t, "x", first.Name)
	assert.Equal(t, "x", second.Name)

	require.True(t, first.TryClaim())
	assert.False(t, first.Idle())
	assert.True(t, second.Idle(), "claiming one record must not touch its duplicate")
}

// TestDevice_FlagLifecycle verifies the idle -> busy -> idle transitions.
func TestDevice_FlagLifecycle(t *testing.T) {
	table := NewTable("127.0.0.1:5555")
	device := table.Devices()[0]

	assert.True(t, device.Idle(), "devices start idle")

	require.True(t, device.TryClaim())
	assert.False(t, device.Idle())
	assert.False(t, device.TryClaim(), "a busy device cannot be claimed again")

	device.Release()
	assert.True(t, device.Idle())
	assert.True(t, device.TryClaim(), "released devices are claimable again")
}

// TestDevice_TryClaim_SingleWinner verifies that concurrent claims admit
// exactly one winner.
func TestDevice_TryClaim_SingleWinner(t *testing.T) {
	table := NewTable("127.0.0.1:5555")
	device := table.Devices()[0]

	const claimers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	start := make(chan struct{})
	wg.Add(claimers)
	for i := 0; i < claimers; i++ {
		go func() {
			defer wg.Done()
			<-start
			if device.TryClaim() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.False(t, device.Idle())
}

// TestLaunchStats_RecordAndGet verifies launch counting per address.
func TestLaunchStats_RecordAndGet(t *testing.T) {
	stats := NewLaunchStats()

	_, ok := stats.Get("a")
	assert.False(t, ok, "unknown devices have no stats")

	first := time.Now()
	stats.Record("a", first)
	second := first.Add(time.Second)
	stats.Record("a", second)
	stats.Record("b", first)

	info, ok := stats.Get("a")
	require.True(t, ok)
	assert.Equal(t, uint64(2), info.Count)
	assert.Equal(t, second, info.LastLaunch)

	info, ok = stats.Get("b")
	require.True(t, ok)
	assert.Equal(t, uint64(1), info.Count)
}

// TestLaunchStats_ConcurrentRecord verifies counting is safe under
// concurrent workers.
func TestLaunchStats_ConcurrentRecord(t *testing.T) {
	stats := NewLaunchStats()

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			stats.Record("a", time.Now())
		}()
	}
	wg.Wait()

	info, ok := stats.Get("a")
	require.True(t, ok)
	assert.Equal(t, uint64(writers), info.Count)
}
