package lzerocoin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	spendVerifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zerocoin_spend_verify_total",
		Help: "Total number of coin spends verified",
	}, []string{"status"})

	spendVerifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zerocoin_spend_verify_duration_seconds",
		Help:    "Duration of a single coin spend verification",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	batchVerifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zerocoin_batch_sok_verify_total",
		Help: "Total number of serial proof batches verified per block",
	}, []string{"status"})

	doubleSpendTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zerocoin_double_spend_rejected_total",
		Help: "Total number of spends rejected for a serial already used",
	})

	blockMintsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zerocoin_block_mints_total",
		Help: "Total number of mints recorded from connected blocks",
	})

	blockSpendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zerocoin_block_spends_total",
		Help: "Total number of spends recorded from connected blocks",
	})
)

type verifyTimer struct {
	start time.Time
}

func newVerifyTimer() verifyTimer {
	return verifyTimer{start: time.Now()}
}

func (t verifyTimer) observe(ok bool) {
	spendVerifyDuration.Observe(time.Since(t.start).Seconds())
	spendVerifyTotal.WithLabelValues(status(ok)).Inc()
}

func status(ok bool) string {
	if ok {
		return "valid"
	}
	return "invalid"
}

func recordDoubleSpend() {
	doubleSpendTotal.Inc()
}

func recordBatchVerify(ok bool) {
	batchVerifyTotal.WithLabelValues(status(ok)).Inc()
}

func recordConnected(mints, spends int) {
	blockMintsTotal.Add(float64(mints))
	blockSpendsTotal.Add(float64(spends))
}
