// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricUtilization = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ringbuf",
		Name:      "utilization_bytes",
		Help:      "Bytes currently outstanding between producer and consumer positions.",
	}, []string{"name"})
	metricProducerSeq = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ringbuf",
		Name:      "producer_seq",
		Help:      "Absolute producer sequence counter.",
	}, []string{"name"})
	metricConsumerSeq = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ringbuf",
		Name:      "consumer_seq",
		Help:      "Absolute consumer sequence counter.",
	}, []string{"name"})
	metricNextCorrelation = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ringbuf",
		Name:      "next_correlation_total",
		Help:      "Number of correlation IDs minted so far.",
	}, []string{"name"})
)

// observable is the subset of the ring buffer API ReportMetrics needs.
// Both *SPSCRingBuffer and *MPMCRingBuffer satisfy it.
type observable interface {
	Utilization() int
	ProducerSeq() uint64
	ConsumerSeq() uint64
	ReadCorrelationCount() uint64
}

// ReportMetrics sets rb's current state into this package's ringbuf_*
// series under name, distinguishing this ring buffer's series from any
// others registered in the same process (e.g. the pipeline stage it
// backs). It takes one snapshot per call; the series are not updated
// between calls.
func ReportMetrics(rb observable, name string) {
	metricUtilization.WithLabelValues(name).Set(float64(rb.Utilization()))
	metricProducerSeq.WithLabelValues(name).Set(float64(rb.ProducerSeq()))
	metricConsumerSeq.WithLabelValues(name).Set(float64(rb.ConsumerSeq()))
	metricNextCorrelation.WithLabelValues(name).Set(float64(rb.ReadCorrelationCount()))
}
