package lwitness

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	witnessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zerocoin_witness_generate_duration_seconds",
		Help:    "Duration of GenerateWitness calls",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	witnessBlocksReplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zerocoin_witness_blocks_replayed_total",
		Help: "Blocks replayed into witnesses",
	})

	witnessResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zerocoin_witness_resets_total",
		Help: "Witness replays started from a checkpoint",
	})

	witnessFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zerocoin_witness_verify_failures_total",
		Help: "Witnesses that did not verify against their checkpoint",
	})
)
