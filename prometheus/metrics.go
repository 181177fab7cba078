// Package prometheus records pipeline metrics with the Prometheus client
// library and writes them out for the node-exporter textfile collector.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ragthedocs"

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics holds the collectors for one indexing run. Each Metrics owns its
// registry so several runs in one process never collide.
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchBytes    prometheus.Counter
	fetchDuration prometheus.Histogram

	embeds        *prometheus.CounterVec
	embedDuration prometheus.Histogram

	pages    *prometheus.CounterVec
	chunks   prometheus.Counter
	batches  prometheus.Counter
	ingested prometheus.Counter
	tokens   prometheus.Counter
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetches_total",
			Help: "Page fetches by result.",
		}, []string{"result"}),
		fetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "fetch_bytes_total",
			Help: "Bytes downloaded.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "fetch_seconds",
			Help: "Fetch latency.", Buckets: durationBuckets,
		}),
		embeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "embeddings_total",
			Help: "Embedding calls by result.",
		}, []string{"result"}),
		embedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "embed_seconds",
			Help: "Embedding latency.", Buckets: durationBuckets,
		}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "pages_parsed_total",
			Help: "Stored pages by parse result.",
		}, []string{"result"}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "chunks_total",
			Help: "Chunk records produced.",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_total",
			Help: "Ingestion batches written.",
		}),
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "entries_ingested_total",
			Help: "Entries written to the vector store.",
		}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tokens_total",
			Help: "Tokens embedded.",
		}),
	}

	m.registry.MustRegister(
		m.fetches, m.fetchBytes, m.fetchDuration,
		m.embeds, m.embedDuration,
		m.pages, m.chunks, m.batches, m.ingested, m.tokens,
	)
	return m
}

// Registry exposes the registry, e.g. for promhttp.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordParse counts one page that was parsed or failed to parse.
func (m *Metrics) RecordParse(chunks int, err error) {
	if err != nil {
		m.pages.WithLabelValues("failed").Inc()
		return
	}
	m.pages.WithLabelValues("ok").Inc()
	m.chunks.Add(float64(chunks))
}

// RecordIngest adds the totals of a finished ingestion.
func (m *Metrics) RecordIngest(batches, written, tokens int) {
	m.batches.Add(float64(batches))
	m.ingested.Add(float64(written))
	m.tokens.Add(float64(tokens))
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
