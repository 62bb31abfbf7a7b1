package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Metrics exposes a small in-memory counter set for the dispatcher.
type Metrics struct {
	events  atomic.Int64
	sent    atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
	emails  atomic.Int64
	cleaned atomic.Int64
}

// New returns a zeroed Metrics collector.
func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncEvents()  { m.events.Add(1) }
func (m *Metrics) IncSent()    { m.sent.Add(1) }
func (m *Metrics) IncFailed()  { m.failed.Add(1) }
func (m *Metrics) IncSkipped() { m.skipped.Add(1) }
func (m *Metrics) IncEmails()  { m.emails.Add(1) }

func (m *Metrics) AddCleaned(n int64) { m.cleaned.Add(n) }

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"events":  m.events.Load(),
		"sent":    m.sent.Load(),
		"failed":  m.failed.Load(),
		"skipped": m.skipped.Load(),
		"emails":  m.emails.Load(),
		"cleaned": m.cleaned.Load(),
	}
}

// Handler serves the counters as JSON. Kept deliberately small so the
// service does not need a full metrics dependency.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.Snapshot())
	})
}
