// This file is part of cdreader.
//
// cdreader is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cdreader is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cdreader.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics exports the statistics of open disc interfaces in the
// prometheus exposition format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sentinal error patterns.
const (
	DuplicateDisc = "metrics: disc %q is already being collected"
	ServeError    = "metrics: %v"
)

const namespace = "cdreader"

// Source is anything that can report interface statistics. All cdif.Interface
// implementations satisfy this.
type Source interface {
	Stats() cdif.Stats
}

type counter struct {
	desc  *prometheus.Desc
	value func(cdif.Stats) float64
	kind  prometheus.ValueType
}

// Collector implements the prometheus.Collector interface over any number of
// Source instances, each identified by a disc label.
type Collector struct {
	crit    sync.Mutex
	discs   map[string]Source
	metrics []counter
}

// NewCollector is the preferred method of initialisation for the Collector
// type.
func NewCollector() *Collector {
	c := &Collector{
		discs: make(map[string]Source),
	}

	add := func(name string, help string, kind prometheus.ValueType, value func(cdif.Stats) float64) {
		c.metrics = append(c.metrics, counter{
			desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, []string{"disc"}, nil),
			value: value,
			kind:  kind,
		})
	}

	add("reads_total", "Total number of raw sector reads requested",
		prometheus.CounterValue, func(s cdif.Stats) float64 { return float64(s.Reads) })
	add("read_failures_total", "Total number of raw sector reads that failed",
		prometheus.CounterValue, func(s cdif.Stats) float64 { return float64(s.Failures) })
	add("hints_total", "Total number of read hints",
		prometheus.CounterValue, func(s cdif.Stats) float64 { return float64(s.Hints) })
	add("queue_dropped_total", "Total number of messages dropped by the reader queues",
		prometheus.CounterValue, func(s cdif.Stats) float64 { return float64(s.Dropped) })
	add("ring_hits_total", "Total number of reads satisfied by the sector ring without waiting",
		prometheus.CounterValue, func(s cdif.Stats) float64 { return float64(s.Ring.Hits) })
	add("ring_stalls_total", "Total number of reads that waited for the reader goroutine",
		prometheus.CounterValue, func(s cdif.Stats) float64 { return float64(s.Ring.Stalls) })
	add("ring_writes_total", "Total number of sectors written into the sector ring",
		prometheus.CounterValue, func(s cdif.Stats) float64 { return float64(s.Ring.Writes) })
	add("ring_evictions_total", "Total number of sectors evicted from the sector ring",
		prometheus.CounterValue, func(s cdif.Stats) float64 { return float64(s.Ring.Evictions) })

	return c
}

// Add a source to the collector under the disc label.
func (c *Collector) Add(disc string, src Source) error {
	c.crit.Lock()
	defer c.crit.Unlock()
	if _, ok := c.discs[disc]; ok {
		return curated.Errorf(DuplicateDisc, disc)
	}
	c.discs[disc] = src
	return nil
}

// Remove the source with the disc label. Removing a label that has not been
// added is not an error.
func (c *Collector) Remove(disc string) {
	c.crit.Lock()
	defer c.crit.Unlock()
	delete(c.discs, disc)
}

// Describe implements the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.crit.Lock()
	labels := make([]string, 0, len(c.discs))
	for l := range c.discs {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	stats := make([]cdif.Stats, len(labels))
	for i, l := range labels {
		stats[i] = c.discs[l].Stats()
	}
	c.crit.Unlock()

	for i, l := range labels {
		for _, m := range c.metrics {
			ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(stats[i]), l)
		}
	}
}

// Handler returns an http.Handler serving the metrics gathered by the
// registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve the registry on the address at the /metrics path until the context is
// cancelled.
func Serve(ctx context.Context, address string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- srv.Shutdown(shutdown)
	}()

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return curated.Errorf(ServeError, err)
	}
	if err := <-done; err != nil {
		return curated.Errorf(ServeError, err)
	}
	return nil
}
