package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"media-manager/internal/logging"
)

// StatsProvider reports the on-disk state the collector exports.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current on-disk state of the output directory.
type Stats struct {
	// SnapshotFiles counts files matching each category's pattern.
	SnapshotFiles map[string]int
	// Newest holds the modification time of each category's newest file.
	// Categories without files are absent.
	Newest map[string]time.Time
}

// Collector refreshes the snapshot gauges on a fixed interval.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stop          chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start collects once and then on every interval until Stop.
func (c *Collector) Start() {
	if c.started.CompareAndSwap(false, true) {
		go c.collectLoop()
	}
}

// Stop ends the collection loop and waits for it to exit. It is safe to
// call more than once, and before Start.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	if !c.started.Load() {
		return
	}
	select {
	case <-c.done:
	case <-time.After(c.interval + time.Second):
		logging.Warn("Metrics collector did not stop in time")
	}
}

func (c *Collector) collectLoop() {
	defer close(c.done)
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stop:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	for category, count := range stats.SnapshotFiles {
		SnapshotFiles.WithLabelValues(category).Set(float64(count))
	}
	for category, newest := range stats.Newest {
		SnapshotNewestTimestamp.WithLabelValues(category).Set(float64(newest.Unix()))
	}

	logging.Debug("Metrics collected: snapshot files=%v", stats.SnapshotFiles)
}
