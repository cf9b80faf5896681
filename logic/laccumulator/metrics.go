package laccumulator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zerocoin_checkpoint_cache_lookups_total",
		Help: "Accumulator value lookups by cache result",
	}, []string{"result"})

	missingChecksums = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zerocoin_checkpoint_missing_checksums",
		Help: "Checksums referenced by the tip but absent from the database",
	})

	checkpointDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zerocoin_checkpoint_calculate_duration_seconds",
		Help:    "Duration of checkpoint recalculation at 10 block boundaries",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	checkpointValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zerocoin_checkpoint_validations_total",
		Help: "Block checkpoint validations by outcome",
	}, []string{"status"})
)
