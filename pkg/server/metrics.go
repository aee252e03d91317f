package server

import (
	"sync/atomic"
	"time"
)

// MetricsCollector aggregates server counters. Everything is atomic;
// the collector is shared between session goroutines.
type MetricsCollector struct {
	sessionsOpened atomic.Int64
	sessionsClosed atomic.Int64
	framesSent     atomic.Int64
	framesDropped  atomic.Int64
	writesApplied  atomic.Int64
	readErrors     atomic.Int64
	writeErrors    atomic.Int64
}

// NewMetricsCollector creates a new MetricsCollector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

func (m *MetricsCollector) sessionOpened() { m.sessionsOpened.Add(1) }
func (m *MetricsCollector) sessionClosed() { m.sessionsClosed.Add(1) }
func (m *MetricsCollector) frameSent()     { m.framesSent.Add(1) }
func (m *MetricsCollector) frameDropped()  { m.framesDropped.Add(1) }
func (m *MetricsCollector) writeApplied()  { m.writesApplied.Add(1) }
func (m *MetricsCollector) readError()     { m.readErrors.Add(1) }
func (m *MetricsCollector) writeError()    { m.writeErrors.Add(1) }

// Snapshot is a point-in-time copy of the server counters.
type Snapshot struct {
	SessionsOpened int64     `json:"sessionsOpened"`
	SessionsClosed int64     `json:"sessionsClosed"`
	FramesSent     int64     `json:"framesSent"`
	FramesDropped  int64     `json:"framesDropped"`
	WritesApplied  int64     `json:"writesApplied"`
	ReadErrors     int64     `json:"readErrors"`
	WriteErrors    int64     `json:"writeErrors"`
	CollectedAt    time.Time `json:"collectedAt"`
}

// Snapshot returns a copy of the current counters.
func (m *MetricsCollector) Snapshot() Snapshot {
	return Snapshot{
		SessionsOpened: m.sessionsOpened.Load(),
		SessionsClosed: m.sessionsClosed.Load(),
		FramesSent:     m.framesSent.Load(),
		FramesDropped:  m.framesDropped.Load(),
		WritesApplied:  m.writesApplied.Load(),
		ReadErrors:     m.readErrors.Load(),
		WriteErrors:    m.writeErrors.Load(),
		CollectedAt:    time.Now(),
	}
}
