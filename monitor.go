package sox

import (
	"sync"
	"time"
)

// ResourceMonitor tracks SoX processes started by this package
type ResourceMonitor struct {
	mu              sync.RWMutex
	activeProcesses map[int]time.Time // PID -> start time
	started         int64
	failed          int64
}

var (
	monitorInstance *ResourceMonitor
	monitorOnce     sync.Once
)

// GetMonitor returns the global resource monitor instance
func GetMonitor() *ResourceMonitor {
	monitorOnce.Do(func() {
		monitorInstance = &ResourceMonitor{
			activeProcesses: make(map[int]time.Time),
		}
	})
	return monitorInstance
}

// TrackProcess registers a new SoX process
func (m *ResourceMonitor) TrackProcess(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeProcesses[pid] = time.Now()
	m.started++
}

// UntrackProcess removes a finished SoX process
func (m *ResourceMonitor) UntrackProcess(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.activeProcesses, pid)
}

// RecordFailure counts a process that exited unsuccessfully
func (m *ResourceMonitor) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
}

// MonitorStats is a snapshot of the monitor counters
type MonitorStats struct {
	ActiveProcesses   int
	TotalConversions  int64
	FailedConversions int64
	SuccessRate       float64
}

// GetStats returns current resource monitoring statistics
func (m *ResourceMonitor) GetStats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := MonitorStats{
		ActiveProcesses:   len(m.activeProcesses),
		TotalConversions:  m.started,
		FailedConversions: m.failed,
		SuccessRate:       100.0,
	}
	if m.started > 0 {
		stats.SuccessRate = float64(m.started-m.failed) / float64(m.started) * 100.0
	}

	return stats
}

// Reset clears all monitoring statistics
func (m *ResourceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeProcesses = make(map[int]time.Time)
	m.started = 0
	m.failed = 0
}
