package scrape

import (
	"time"

	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/metrics"
)

// Metrics records scrape activity into a registry. A nil *Metrics is a no-op.
type Metrics struct {
	reg *metrics.Registry
}

// NewMetrics records scrape activity into reg.
func NewMetrics(reg *metrics.Registry) *Metrics {
	return &Metrics{reg: reg}
}

func (m *Metrics) pageFetched(src vehicle.Source) {
	if m == nil {
		return
	}
	m.reg.Counter(metrics.WithLabels("scrape_pages_total", "source", string(src)), "List pages fetched").Inc()
}

func (m *Metrics) detailFetched(src vehicle.Source) {
	if m == nil {
		return
	}
	m.reg.Counter(metrics.WithLabels("scrape_details_total", "source", string(src)), "Detail pages fetched").Inc()
}

func (m *Metrics) listings(src vehicle.Source, n int) {
	if m == nil {
		return
	}
	m.reg.Counter(metrics.WithLabels("scrape_listings_total", "source", string(src)), "Listings normalized").Add(int64(n))
}

func (m *Metrics) failed(src vehicle.Source) {
	if m == nil {
		return
	}
	m.reg.Counter(metrics.WithLabels("scrape_failures_total", "source", string(src)), "Source runs that failed").Inc()
}

func (m *Metrics) observe(src vehicle.Source, start time.Time) {
	if m == nil {
		return
	}
	m.reg.Histogram(metrics.WithLabels("scrape_source_duration_seconds", "source", string(src)), "Source run duration", nil).Since(start)
}
