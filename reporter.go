package bbtrace

import (
	"fmt"
	"io"

	"github.com/rcrowley/go-metrics"

	"github.com/skipor/bbtrace/cache"
)

const reportSeparator = "===============================================\n"

// Reporter writes the final analysis results: the three counters and the
// final cache occupancy.
type Reporter struct {
	Out io.Writer
	// Metrics, if non-nil, gets final counter values and is dumped
	// after the report.
	Metrics metrics.Registry
}

// Report reads stats once and writes the results. Must be called only after
// the exit notification, when no further observes can occur.
func (r *Reporter) Report(stats cache.Stats) error {
	c := stats.Counters()
	occupancy := stats.Occupancy()
	_, err := fmt.Fprintf(r.Out,
		reportSeparator+
			"bbtrace analysis results: \n"+
			"Number of basic blocks: %v\n"+
			"Number of basic block hits: %v\n"+
			"Number of basic block misses: %v\n"+
			"Size of cache: %v\n"+
			reportSeparator,
		c.Total, c.Hits, c.Misses, occupancy)
	if err != nil {
		return err
	}
	if r.Metrics != nil {
		metrics.GetOrRegisterCounter("cache.hits", r.Metrics).Inc(int64(c.Hits))
		metrics.GetOrRegisterCounter("cache.misses", r.Metrics).Inc(int64(c.Misses))
		metrics.GetOrRegisterGauge("cache.occupancy", r.Metrics).Update(int64(occupancy))
		metrics.WriteOnce(r.Metrics, r.Out)
	}
	return nil
}

// ExitHook adapts the reporter to broker subscription: report on exit,
// panic on write error. There is nowhere to return it at that point.
func (r *Reporter) ExitHook(stats cache.Stats) ExitHook {
	return func() {
		if err := r.Report(stats); err != nil {
			panic(err)
		}
	}
}
