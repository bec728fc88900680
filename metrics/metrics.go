/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics exposes the pool and client observability fields as
// prometheus.Collector gauges. The caller registers them (Register); a
// pool's Close/UnregisterMetrics paths tear a pool's gauges down.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolMetrics is one destination pool's gauge set. Each pool owns its own
// instance, labeled by node address, and registers/unregisters it against a
// shared *prometheus.Registry.
type PoolMetrics struct {
	OpenChannels        prometheus.Gauge
	MaxChannels         prometheus.Gauge
	WriteQueueSize      prometheus.Gauge
	NumberRequestsSent  prometheus.Counter

	registry *prometheus.Registry
}

// NewPoolMetrics builds (but does not register) the gauge set for one pool,
// labeled by the destination's address.
func NewPoolMetrics(registry *prometheus.Registry, nodeAddr string) *PoolMetrics {
	labels := prometheus.Labels{"node": nodeAddr}
	return &PoolMetrics{
		registry: registry,
		OpenChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "gorpc",
			Subsystem:   "pool",
			Name:        "open_channels",
			Help:        "Currently open sockets for this destination, idle plus in-flight-open.",
			ConstLabels: labels,
		}),
		MaxChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "gorpc",
			Subsystem:   "pool",
			Name:        "max_channels",
			Help:        "Configured maxConnectionsPerNode for this destination.",
			ConstLabels: labels,
		}),
		WriteQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "gorpc",
			Subsystem:   "pool",
			Name:        "write_queue_size",
			Help:        "Requests currently waiting for a writable channel.",
			ConstLabels: labels,
		}),
		NumberRequestsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "gorpc",
			Subsystem:   "pool",
			Name:        "requests_sent_total",
			Help:        "Monotonic count of requests written to a socket.",
			ConstLabels: labels,
		}),
	}
}

// Register adds every collector to the registry. Safe to call once per
// PoolMetrics instance.
func (m *PoolMetrics) Register() error {
	for _, c := range []prometheus.Collector{m.OpenChannels, m.MaxChannels, m.WriteQueueSize, m.NumberRequestsSent} {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Unregister removes every collector from the registry — the Go-native
// unregisterJMX: it detaches observability without touching any socket.
func (m *PoolMetrics) Unregister() {
	m.registry.Unregister(m.OpenChannels)
	m.registry.Unregister(m.MaxChannels)
	m.registry.Unregister(m.WriteQueueSize)
	m.registry.Unregister(m.NumberRequestsSent)
}

// ClientMetrics exposes per-node latency percentiles, pending counts, RPS
// and cluster health score as gauge vectors keyed by node address.
type ClientMetrics struct {
	LatencyMillis *prometheus.GaugeVec
	Pending       *prometheus.GaugeVec
	RPS           *prometheus.GaugeVec
	HealthScore   *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewClientMetrics builds (but does not register) the client-wide gauge
// vectors. LatencyMillis carries a "percentile" label (p50/p75/p90/p95/p99)
// in addition to "node".
func NewClientMetrics(registry *prometheus.Registry) *ClientMetrics {
	return &ClientMetrics{
		registry: registry,
		LatencyMillis: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gorpc",
			Subsystem: "client",
			Name:      "latency_millis",
			Help:      "Cached per-node latency percentile, in milliseconds.",
		}, []string{"node", "percentile"}),
		Pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gorpc",
			Subsystem: "client",
			Name:      "pending_requests",
			Help:      "In-flight requests per node.",
		}, []string{"node"}),
		RPS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gorpc",
			Subsystem: "client",
			Name:      "requests_per_second",
			Help:      "Finished requests per node over the trailing second.",
		}, []string{"node"}),
		HealthScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gorpc",
			Subsystem: "client",
			Name:      "health_score",
			Help:      "Derived per-node health score; lower is healthier.",
		}, []string{"node"}),
	}
}

// Register adds every collector to the registry.
func (m *ClientMetrics) Register() error {
	for _, c := range []prometheus.Collector{m.LatencyMillis, m.Pending, m.RPS, m.HealthScore} {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Unregister removes every collector from the registry.
func (m *ClientMetrics) Unregister() {
	m.registry.Unregister(m.LatencyMillis)
	m.registry.Unregister(m.Pending)
	m.registry.Unregister(m.RPS)
	m.registry.Unregister(m.HealthScore)
}
