/**
 * Copyright 2024 Confluent Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics exposes Prometheus collectors for plan caches and
// container files.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Plan kinds used as the "plan" label
const (
	PlanWrite = "write"
	PlanRead  = "read"
	PlanBind  = "bind"
)

// Directions used as the "direction" label
const (
	DirectionWrite = "write"
	DirectionRead  = "read"
)

// Metrics holds the collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	PlanCacheHits      *prometheus.CounterVec
	PlanCacheMisses    *prometheus.CounterVec
	PlanCompileErrors  *prometheus.CounterVec
	ContainerBlocks    *prometheus.CounterVec
	ContainerRecords   *prometheus.CounterVec
	ContainerBlockSize *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg when reg is not
// nil
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		PlanCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avro",
			Name:      "plan_cache_hits_total",
			Help:      "Number of compiled plans served from cache.",
		}, []string{"plan"}),
		PlanCacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avro",
			Name:      "plan_cache_misses_total",
			Help:      "Number of plans compiled because they were not cached.",
		}, []string{"plan"}),
		PlanCompileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avro",
			Name:      "plan_compile_errors_total",
			Help:      "Number of plan compilations that failed.",
		}, []string{"plan"}),
		ContainerBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avro",
			Subsystem: "container",
			Name:      "blocks_total",
			Help:      "Number of container file blocks written or read.",
		}, []string{"direction"}),
		ContainerRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avro",
			Subsystem: "container",
			Name:      "records_total",
			Help:      "Number of container file records written or read.",
		}, []string{"direction"}),
		ContainerBlockSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "avro",
			Subsystem: "container",
			Name:      "block_bytes",
			Help:      "Compressed size of container file blocks.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"direction"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.PlanCacheHits, m.PlanCacheMisses, m.PlanCompileErrors,
			m.ContainerBlocks, m.ContainerRecords, m.ContainerBlockSize,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// CacheHit records a plan cache hit
func (m *Metrics) CacheHit(plan string) {
	if m != nil {
		m.PlanCacheHits.WithLabelValues(plan).Inc()
	}
}

// CacheMiss records a plan cache miss
func (m *Metrics) CacheMiss(plan string) {
	if m != nil {
		m.PlanCacheMisses.WithLabelValues(plan).Inc()
	}
}

// CompileError records a failed plan compilation
func (m *Metrics) CompileError(plan string) {
	if m != nil {
		m.PlanCompileErrors.WithLabelValues(plan).Inc()
	}
}

// Block records a container block of records with the given size
func (m *Metrics) Block(direction string, records int64, size int) {
	if m != nil {
		m.ContainerBlocks.WithLabelValues(direction).Inc()
		m.ContainerRecords.WithLabelValues(direction).Add(float64(records))
		m.ContainerBlockSize.WithLabelValues(direction).Observe(float64(size))
	}
}
