package host

import (
	"time"

	"github.com/sliink/flownode/internal/node"
)

// NodeReport is a point-in-time view of one driven node for inspection
type NodeReport struct {
	Name      string                   `json:"name"`
	Node      node.Snapshot            `json:"node"`
	Outputs   map[string]OutputCapture `json:"outputs"`
	LastRun   time.Time                `json:"last_run,omitempty"`
	LastError string                   `json:"last_error,omitempty"`
}

// Report captures the driver's node state and downstream output
func (d *Driver) Report() NodeReport {
	d.mutex.Lock()
	lastRun := d.lastRun
	lastError := d.lastError
	d.mutex.Unlock()

	return NodeReport{
		Name:      d.name,
		Node:      d.node.Snapshot(),
		Outputs:   d.sink.Captured(),
		LastRun:   lastRun,
		LastError: lastError,
	}
}

// Reports captures the state of every registered driver, sorted by name
func (r *DriverRegistry) Reports() []NodeReport {
	drivers := r.All()
	reports := make([]NodeReport, 0, len(drivers))
	for _, d := range drivers {
		reports = append(reports, d.Report())
	}
	return reports
}
