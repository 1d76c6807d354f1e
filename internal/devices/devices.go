package devices

import (
	"strings"
	"sync/atomic"
)

// Separator joins device addresses on the command line and in config files.
const Separator = "/"

// Device is one supervised target. Name is an adb address (host:port or
// serial) and never changes after parsing. The idle flag is shared between
// the supervisor scan and the single in-flight worker for this device.
type Device struct {
	Name string

	idle atomic.Bool
}

func newDevice(name string) *Device {
	d := &Device{Name: name}
	d.idle.Store(true)
	return d
}

// Idle reports whether no worker currently owns the device.
func (d *Device) Idle() bool {
	return d.idle.Load()
}

// TryClaim atomically flips the device from idle to busy. It returns false
// when a worker already owns the device, so between two Release calls at
// most one claim can succeed.
func (d *Device) TryClaim() bool {
	return d.idle.CompareAndSwap(true, false)
}

// Release marks the device idle again. The owning worker calls this
// unconditionally, whether or not its bridge commands succeeded.
func (d *Device) Release() {
	d.idle.Store(true)
}

// ParseList splits a Separator-joined device list into trimmed, non-empty
// address strings, preserving order. Internal whitespace is kept as-is and
// no address syntax validation happens here; adb is the authority on what
// actually connects.
func ParseList(list string) []string {
	parts := strings.Split(list, Separator)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		names = append(names, p)
	}
	return names
}

// Table is the ordered device list. It is built once at startup and never
// restructured; only the per-device flags change afterwards.
type Table struct {
	devices []*Device
}

// NewTable builds a Table from a raw device list string. Duplicate addresses
// yield independent records, each with its own flag.
func NewTable(list string) *Table {
	names := ParseList(list)
	t := &Table{devices: make([]*Device, 0, len(names))}
	for _, name := range names {
		t.devices = append(t.devices, newDevice(name))
	}
	return t
}

// Devices returns the records in parse order. Callers must not mutate the
// returned slice.
func (t *Table) Devices() []*Device {
	return t.devices
}

// Len returns the number of records, duplicates included.
func (t *Table) Len() int {
	return len(t.devices)
}
