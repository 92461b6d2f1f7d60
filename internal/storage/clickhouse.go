package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	config "github.com/zhivkoto/uho-indexing/configs"
	"github.com/zhivkoto/uho-indexing/internal/common"
	"github.com/zhivkoto/uho-indexing/internal/metrics"
)

const defaultTable = "matched_transactions"

// ClickHouseSink is an optional secondary sink that records every matched
// transaction in ClickHouse for later querying. The NDJSON stream remains
// the primary output; insert failures surface to the caller, which treats
// them as non-fatal.
type ClickHouseSink struct {
	conn  clickhouse.Conn
	table string
}

func NewClickHouseSink(cfg *config.ClickhouseConfig) (*ClickHouseSink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr:     []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
			Database: cfg.Database,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %v", err)
	}

	table := cfg.Table
	if table == "" {
		table = defaultTable
	}

	return &ClickHouseSink{
		conn:  conn,
		table: table,
	}, nil
}

// Insert writes one matched record. Each call is its own batch: records
// arrive one at a time from independent workers and the sink keeps no
// cross-record state.
func (s *ClickHouseSink) Insert(ctx context.Context, record common.OutputRecord) error {
	start := time.Now()

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s (signature, slot, block_time, logs)", s.table))
	if err != nil {
		return fmt.Errorf("failed to prepare ClickHouse batch: %v", err)
	}

	if err := batch.Append(record.Signature, record.Slot, record.BlockTime, record.Logs); err != nil {
		return fmt.Errorf("failed to append record %s: %v", record.Signature, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert record %s: %v", record.Signature, err)
	}

	metrics.ClickHouseRowsInserted.Inc()
	metrics.ClickHouseInsertDuration.Observe(time.Since(start).Seconds())
	return nil
}

func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
