// Package perf aggregates per-tick loop telemetry over a bounded
// rolling window, feeding diagnostics overlays with recent averages
// instead of noisy instantaneous values.
package perf

import "errors"

// ErrInvalidHistorySize is returned when a Monitor is constructed with
// a non-positive window size.
var ErrInvalidHistorySize = errors.New("history size must be positive")

// Monitor keeps four parallel FIFO histories, one per recorded metric.
// The histories advance in lock-step: a sample either exists in all of
// them or in none, and the oldest sample is evicted first once the
// window is full.
//
// Monitor is not safe for concurrent use; it belongs to the tick loop
// that records into it.
type Monitor struct {
	historySize     int
	fps             []float64
	frameTimes      []float64
	entityCounts    []int
	collisionChecks []int
}

// Stats is a snapshot of the current window.
type Stats struct {
	AvgFPS             float64 `json:"avg_fps"`
	AvgFrameTimeMS     float64 `json:"avg_frame_time_ms"`
	CurrentEntityCount int     `json:"current_entity_count"`
	AvgEntityCount     float64 `json:"avg_entity_count"`
	AvgCollisionChecks float64 `json:"avg_collision_checks"`
}

// New creates a monitor with the given rolling-window capacity.
func New(historySize int) (*Monitor, error) {
	if historySize <= 0 {
		return nil, ErrInvalidHistorySize
	}
	return &Monitor{
		historySize:     historySize,
		fps:             make([]float64, 0, historySize),
		frameTimes:      make([]float64, 0, historySize),
		entityCounts:    make([]int, 0, historySize),
		collisionChecks: make([]int, 0, historySize),
	}, nil
}

// Record appends one tick's sample. dt is the tick duration in
// seconds; a non-positive dt records an fps of 0 rather than dividing
// by it. Frame time is stored in milliseconds.
func (m *Monitor) Record(dt float64, entityCount, collisionChecks int) {
	fps := 0.0
	if dt > 0 {
		fps = 1 / dt
	}

	m.fps = append(m.fps, fps)
	m.frameTimes = append(m.frameTimes, dt*1000)
	m.entityCounts = append(m.entityCounts, entityCount)
	m.collisionChecks = append(m.collisionChecks, collisionChecks)

	if len(m.fps) > m.historySize {
		m.fps = m.fps[1:]
		m.frameTimes = m.frameTimes[1:]
		m.entityCounts = m.entityCounts[1:]
		m.collisionChecks = m.collisionChecks[1:]
	}
}

// AverageFPS returns the mean fps over the window, 0 when empty.
func (m *Monitor) AverageFPS() float64 {
	return meanFloat(m.fps)
}

// AverageFrameTime returns the mean frame time in milliseconds over
// the window, 0 when empty.
func (m *Monitor) AverageFrameTime() float64 {
	return meanFloat(m.frameTimes)
}

// WindowLen returns the number of samples currently held.
func (m *Monitor) WindowLen() int {
	return len(m.fps)
}

// Stats returns a snapshot of the window's averages and the most
// recently recorded entity count.
func (m *Monitor) Stats() Stats {
	s := Stats{
		AvgFPS:             m.AverageFPS(),
		AvgFrameTimeMS:     m.AverageFrameTime(),
		AvgEntityCount:     meanInt(m.entityCounts),
		AvgCollisionChecks: meanInt(m.collisionChecks),
	}
	if n := len(m.entityCounts); n > 0 {
		s.CurrentEntityCount = m.entityCounts[n-1]
	}
	return s
}

// Clear drops every sample from all four histories.
func (m *Monitor) Clear() {
	m.fps = m.fps[:0]
	m.frameTimes = m.frameTimes[:0]
	m.entityCounts = m.entityCounts[:0]
	m.collisionChecks = m.collisionChecks[:0]
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
