package repository

import (
	"sync/atomic"
	"time"
)

// Observer receives notifications about repository operations. Hooks are
// called after the operation completes and outside the compound critical
// section.
type Observer interface {
	// OnCreate is called after a resource is inserted by Post or AddOrUpdate.
	OnCreate(key int, duration time.Duration)

	// OnRead is called after a successful Get.
	OnRead(key int, duration time.Duration)

	// OnList is called after GetResources.
	OnList(count int, duration time.Duration)

	// OnUpdate is called after Put or AddOrUpdate replaced a stored value.
	OnUpdate(key int, duration time.Duration)

	// OnDelete is called after a resource was removed.
	OnDelete(key int, duration time.Duration)

	// OnError is called when an operation fails.
	OnError(operation string, key int, err error)

	// OnReset is called after the store was reseeded.
	OnReset(count int, duration time.Duration)
}

// NoopObserver is a no-op implementation of Observer.
type NoopObserver struct{}

func (n *NoopObserver) OnCreate(key int, duration time.Duration)     {}
func (n *NoopObserver) OnRead(key int, duration time.Duration)       {}
func (n *NoopObserver) OnList(count int, duration time.Duration)     {}
func (n *NoopObserver) OnUpdate(key int, duration time.Duration)     {}
func (n *NoopObserver) OnDelete(key int, duration time.Duration)     {}
func (n *NoopObserver) OnError(operation string, key int, err error) {}
func (n *NoopObserver) OnReset(count int, duration time.Duration)    {}

// MetricsObserver counts repository operations. Counters are atomic so it
// can be shared by every goroutine using the repository.
type MetricsObserver struct {
	createCount       atomic.Int64
	readCount         atomic.Int64
	listCount         atomic.Int64
	updateCount       atomic.Int64
	deleteCount       atomic.Int64
	errorCount        atomic.Int64
	preconditionCount atomic.Int64
	conflictCount     atomic.Int64
	resetCount        atomic.Int64
	totalLatencyNs    atomic.Int64
}

// NewMetricsObserver creates a new metrics observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (m *MetricsObserver) OnCreate(key int, duration time.Duration) {
	m.createCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnRead(key int, duration time.Duration) {
	m.readCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnList(count int, duration time.Duration) {
	m.listCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnUpdate(key int, duration time.Duration) {
	m.updateCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnDelete(key int, duration time.Duration) {
	m.deleteCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

func (m *MetricsObserver) OnError(operation string, key int, err error) {
	m.errorCount.Add(1)
	switch KindOf(err) {
	case KindPreconditionFailed, KindRaceLost:
		m.preconditionCount.Add(1)
	case KindConflict:
		m.conflictCount.Add(1)
	}
}

func (m *MetricsObserver) OnReset(count int, duration time.Duration) {
	m.resetCount.Add(1)
	m.totalLatencyNs.Add(int64(duration))
}

// Snapshot returns a copy of the current counters.
func (m *MetricsObserver) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CreateCount:       m.createCount.Load(),
		ReadCount:         m.readCount.Load(),
		ListCount:         m.listCount.Load(),
		UpdateCount:       m.updateCount.Load(),
		DeleteCount:       m.deleteCount.Load(),
		ErrorCount:        m.errorCount.Load(),
		PreconditionCount: m.preconditionCount.Load(),
		ConflictCount:     m.conflictCount.Load(),
		ResetCount:        m.resetCount.Load(),
		TotalLatency:      time.Duration(m.totalLatencyNs.Load()),
	}
}

// MetricsSnapshot is a point-in-time copy of MetricsObserver counters.
type MetricsSnapshot struct {
	CreateCount       int64         `json:"createCount"`
	ReadCount         int64         `json:"readCount"`
	ListCount         int64         `json:"listCount"`
	UpdateCount       int64         `json:"updateCount"`
	DeleteCount       int64         `json:"deleteCount"`
	ErrorCount        int64         `json:"errorCount"`
	PreconditionCount int64         `json:"preconditionCount"`
	ConflictCount     int64         `json:"conflictCount"`
	ResetCount        int64         `json:"resetCount"`
	TotalLatency      time.Duration `json:"totalLatencyNs"`
}

// TotalOperations returns the number of successful operations.
func (s MetricsSnapshot) TotalOperations() int64 {
	return s.CreateCount + s.ReadCount + s.ListCount + s.UpdateCount + s.DeleteCount
}
