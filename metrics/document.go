package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kochabx/docvault/document"
)

const namespace = "docvault"

// Document 文档服务与信封加解密的指标
type Document struct {
	envelopeOps      *prometheus.CounterVec
	envelopeFailures *prometheus.CounterVec
	envelopeDuration *prometheus.HistogramVec
	documents        *prometheus.CounterVec
}

var _ document.Recorder = (*Document)(nil)

// NewDocument 创建并注册文档指标
func NewDocument(reg prometheus.Registerer) (*Document, error) {
	d := &Document{
		envelopeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelope_operations_total",
			Help:      "Envelope encrypt and decrypt operations by result.",
		}, []string{"op", "result"}),
		envelopeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelope_failures_total",
			Help:      "Envelope failures by kind.",
		}, []string{"kind"}),
		envelopeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "envelope_duration_seconds",
			Help:      "Envelope operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Completed document operations.",
		}, []string{"op"}),
	}

	for _, c := range []prometheus.Collector{d.envelopeOps, d.envelopeFailures, d.envelopeDuration, d.documents} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ObserveEnvelope 记录一次加解密操作，kind 为空表示成功
func (d *Document) ObserveEnvelope(op string, elapsed time.Duration, kind string) {
	d.envelopeDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if kind == "" {
		d.envelopeOps.WithLabelValues(op, "success").Inc()
		return
	}
	d.envelopeOps.WithLabelValues(op, "failure").Inc()
	d.envelopeFailures.WithLabelValues(kind).Inc()
}

// IncDocument 记录一次完成的文档操作
func (d *Document) IncDocument(op string) {
	d.documents.WithLabelValues(op).Inc()
}
