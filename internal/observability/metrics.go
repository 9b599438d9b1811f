package observability

import (
	"sync/atomic"
	"time"
)

// Metrics tracks service call counters
type Metrics struct {
	advisoryCalls   int64
	advisoryErrors  int64
	advisoryLatency int64 // Total latency in nanoseconds
	panelTriggers   int64
	panelCancels    int64
	sectionMerges   int64
	submissions     int64
	uploads         int64
	uploadErrors    int64
}

var globalMetrics = &Metrics{}

// Snapshot is the JSON view of the counters.
type Snapshot struct {
	AdvisoryCalls        int64   `json:"advisory_calls"`
	AdvisoryErrors       int64   `json:"advisory_errors"`
	AdvisoryAvgLatencyMs float64 `json:"advisory_avg_latency_ms"`
	AdvisoryErrorRate    float64 `json:"advisory_error_rate"`
	PanelTriggers        int64   `json:"panel_triggers"`
	PanelCancels         int64   `json:"panel_cancels"`
	SectionMerges        int64   `json:"section_merges"`
	Submissions          int64   `json:"submissions"`
	Uploads              int64   `json:"uploads"`
	UploadErrors         int64   `json:"upload_errors"`
}

// GetMetrics returns the current metrics snapshot
func GetMetrics() Metrics {
	return Metrics{
		advisoryCalls:   atomic.LoadInt64(&globalMetrics.advisoryCalls),
		advisoryErrors:  atomic.LoadInt64(&globalMetrics.advisoryErrors),
		advisoryLatency: atomic.LoadInt64(&globalMetrics.advisoryLatency),
		panelTriggers:   atomic.LoadInt64(&globalMetrics.panelTriggers),
		panelCancels:    atomic.LoadInt64(&globalMetrics.panelCancels),
		sectionMerges:   atomic.LoadInt64(&globalMetrics.sectionMerges),
		submissions:     atomic.LoadInt64(&globalMetrics.submissions),
		uploads:         atomic.LoadInt64(&globalMetrics.uploads),
		uploadErrors:    atomic.LoadInt64(&globalMetrics.uploadErrors),
	}
}

// ResetMetrics resets all metrics (useful for testing)
func ResetMetrics() {
	atomic.StoreInt64(&globalMetrics.advisoryCalls, 0)
	atomic.StoreInt64(&globalMetrics.advisoryErrors, 0)
	atomic.StoreInt64(&globalMetrics.advisoryLatency, 0)
	atomic.StoreInt64(&globalMetrics.panelTriggers, 0)
	atomic.StoreInt64(&globalMetrics.panelCancels, 0)
	atomic.StoreInt64(&globalMetrics.sectionMerges, 0)
	atomic.StoreInt64(&globalMetrics.submissions, 0)
	atomic.StoreInt64(&globalMetrics.uploads, 0)
	atomic.StoreInt64(&globalMetrics.uploadErrors, 0)
}

// RecordAdvisoryCall records one advisory service call
func RecordAdvisoryCall(duration time.Duration, err error) {
	atomic.AddInt64(&globalMetrics.advisoryCalls, 1)
	atomic.AddInt64(&globalMetrics.advisoryLatency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&globalMetrics.advisoryErrors, 1)
	}
}

func RecordPanelTrigger() { atomic.AddInt64(&globalMetrics.panelTriggers, 1) }

func RecordPanelCancel() { atomic.AddInt64(&globalMetrics.panelCancels, 1) }

func RecordSectionMerge() { atomic.AddInt64(&globalMetrics.sectionMerges, 1) }

func RecordSubmission() { atomic.AddInt64(&globalMetrics.submissions, 1) }

// RecordUpload records an image upload attempt
func RecordUpload(err error) {
	atomic.AddInt64(&globalMetrics.uploads, 1)
	if err != nil {
		atomic.AddInt64(&globalMetrics.uploadErrors, 1)
	}
}

// AverageAdvisoryLatency returns the average latency in milliseconds
func (m Metrics) AverageAdvisoryLatency() float64 {
	if m.advisoryCalls == 0 {
		return 0
	}
	avgNs := float64(m.advisoryLatency) / float64(m.advisoryCalls)
	return avgNs / 1e6
}

// AdvisoryErrorRate returns the error rate as a percentage
func (m Metrics) AdvisoryErrorRate() float64 {
	if m.advisoryCalls == 0 {
		return 0
	}
	return float64(m.advisoryErrors) / float64(m.advisoryCalls) * 100
}

func (m Metrics) Snapshot() Snapshot {
	return Snapshot{
		AdvisoryCalls:        m.advisoryCalls,
		AdvisoryErrors:       m.advisoryErrors,
		AdvisoryAvgLatencyMs: m.AverageAdvisoryLatency(),
		AdvisoryErrorRate:    m.AdvisoryErrorRate(),
		PanelTriggers:        m.panelTriggers,
		PanelCancels:         m.panelCancels,
		SectionMerges:        m.sectionMerges,
		Submissions:          m.submissions,
		Uploads:              m.uploads,
		UploadErrors:         m.uploadErrors,
	}
}
