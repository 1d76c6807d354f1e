package models

import "time"

// DeviceStatus is one device row in a fleet snapshot.
type DeviceStatus struct {
	Name       string    `json:"name"`
	Idle       bool      `json:"idle"`
	Launches   uint64    `json:"launches"`
	LastLaunch time.Time `json:"last_launch"`
}

// FleetSnapshot is the payload the status service publishes per interval.
type FleetSnapshot struct {
	AgentID   string         `json:"agent_id"`
	Timestamp time.Time      `json:"timestamp"`
	Devices   []DeviceStatus `json:"devices"`
}

// HostMetrics captures agent host usage reported by the metrics service.
type HostMetrics struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	Goroutines    int       `json:"goroutines"`
}
