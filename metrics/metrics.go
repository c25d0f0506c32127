// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package metrics exposes Prometheus instrumentation for dialogue turns, the
// embedding provider and the HTTP transport.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/dialogue"
)

const namespace = "civicfaq"

// Metrics owns a private registry and every civicfaq collector.
// It is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	turns            *prometheus.CounterVec
	topicOverrides   *prometheus.CounterVec
	similarity       prometheus.Histogram
	embedLatency     prometheus.Histogram
	providerAttempts *prometheus.CounterVec
	indexEntries     prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

var _ dialogue.TurnMonitor = (*Metrics)(nil)

// New creates and registers the collectors. Process and Go runtime
// collectors are included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Dialogue turns by outcome.",
		}, []string{"outcome", "topic"}),
		topicOverrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topic_overrides_total",
			Help:      "Turns where an explicit topic mention was detected.",
		}, []string{"topic"}),
		similarity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "best_match_similarity",
			Help:      "Cosine similarity of the best match per retrieval.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		embedLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_embedding_seconds",
			Help:      "Time spent embedding user messages, retries included.",
			Buckets:   prometheus.DefBuckets,
		}),
		providerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Embedding provider HTTP attempts by outcome.",
		}, []string{"outcome"}),
		indexEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_entries",
			Help:      "FAQ entries in the served retrieval index.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.turns,
		m.topicOverrides,
		m.similarity,
		m.embedLatency,
		m.providerAttempts,
		m.indexEntries,
		m.httpRequests,
		m.httpLatency,
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveProviderAttempt counts one embedding provider attempt.
// Its signature matches sidecar.AttemptObserver.
func (m *Metrics) ObserveProviderAttempt(outcome string) {
	m.providerAttempts.WithLabelValues(outcome).Inc()
}

// SetIndexEntries records the size of the served index.
func (m *Metrics) SetIndexEntries(n int) {
	m.indexEntries.Set(float64(n))
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Start implements dialogue.TurnMonitor.
func (m *Metrics) Start(_, _ string) {}

// TopicOverride implements dialogue.TurnMonitor.
func (m *Metrics) TopicOverride(topic string) {
	m.topicOverrides.WithLabelValues(topic).Inc()
}

// AfterEmbedding implements dialogue.TurnMonitor.
func (m *Metrics) AfterEmbedding(elapsed time.Duration, _ error) {
	m.embedLatency.Observe(elapsed.Seconds())
}

// AfterRetrieval implements dialogue.TurnMonitor.
func (m *Metrics) AfterRetrieval(best *core.FAQEntry, score float32, _ []core.Match) {
	if best != nil {
		m.similarity.Observe(float64(score))
	}
}

// Finish implements dialogue.TurnMonitor.
func (m *Metrics) Finish(result core.TurnResult, outcome dialogue.Outcome) {
	m.turns.WithLabelValues(string(outcome), result.Topic).Inc()
}
