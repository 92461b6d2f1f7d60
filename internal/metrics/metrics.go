package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline Metrics
var (
	TransactionsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backfill_transactions_processed_total",
		Help: "The total number of transactions seen by the filter pipeline",
	})

	TransactionsMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backfill_transactions_matched_total",
		Help: "The total number of transactions that passed all filter stages",
	})

	CurrentSlot = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backfill_current_slot",
		Help: "The most recently observed slot number",
	})

	SerializationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backfill_serialization_failures_total",
		Help: "The number of matched transactions dropped because they could not be serialized",
	})
)

// Emitter Metrics
var (
	EmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backfill_emit_duration_seconds",
		Help:    "Time taken to serialize and write one output line",
		Buckets: prometheus.DefBuckets,
	})
)

// Publisher Metrics
var (
	PublishedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backfill_published_records_total",
		Help: "The number of matched records published to Kafka",
	})

	PublishDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backfill_publish_duration_seconds",
		Help:    "Time taken to publish one matched record to Kafka",
		Buckets: prometheus.DefBuckets,
	})
)

// Storage Metrics
var (
	ClickHouseRowsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backfill_clickhouse_rows_inserted_total",
		Help: "The total number of matched transactions inserted into ClickHouse",
	})

	ClickHouseInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backfill_clickhouse_insert_duration_seconds",
		Help:    "Time taken to insert matched transactions into ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

// Source Metrics
var (
	SourceRecordsRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backfill_source_records_read_total",
		Help: "The number of records read from the transaction source",
	})

	SourceDecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backfill_source_decode_failures_total",
		Help: "The number of source lines that could not be decoded",
	})
)
