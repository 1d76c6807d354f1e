package devices

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// LaunchInfo summarizes the workers started for one device address.
type LaunchInfo struct {
	Count      uint64
	LastLaunch time.Time
}

// LaunchStats counts worker launches per device address. Workers write,
// the status service reads. Duplicate table records that share an address
// share a counter.
type LaunchStats struct {
	m cmap.ConcurrentMap[string, LaunchInfo]
}

// NewLaunchStats returns an empty stats table.
func NewLaunchStats() *LaunchStats {
	return &LaunchStats{m: cmap.New[LaunchInfo]()}
}

// Record notes one worker launch for the named device.
func (s *LaunchStats) Record(name string, at time.Time) {
	s.m.Upsert(name, LaunchInfo{Count: 1, LastLaunch: at}, func(exists bool, current, incoming LaunchInfo) LaunchInfo {
		if !exists {
			return incoming
		}
		current.Count++
		current.LastLaunch = at
		return current
	})
}

// Get returns the launch info for the named device, if any worker has been
// started for it yet.
func (s *LaunchStats) Get(name string) (LaunchInfo, bool) {
	return s.m.Get(name)
}
