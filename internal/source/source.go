package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	config "github.com/zhivkoto/uho-indexing/configs"
	"github.com/zhivkoto/uho-indexing/internal/common"
	"github.com/zhivkoto/uho-indexing/internal/metrics"
)

const (
	defaultWorkers = 4
	recordBuffer   = 1024

	// decoded transaction dumps can carry very long log lines
	maxLineSize = 16 * 1024 * 1024
)

// Handler is invoked once per record, concurrently, from whichever worker
// owns the record.
type Handler func(ctx context.Context, tx *common.TransactionRecord) error

// ISource streams already-decoded transaction records into a handler. The
// source owns the worker pool; the handler never pulls.
type ISource interface {
	Stream(ctx context.Context, handler Handler) error
	Close()
}

// NewSource builds the configured source implementation.
func NewSource(cfg *config.SourceConfig, rng *config.RangeConfig) (ISource, error) {
	switch config.SourceType(cfg.Type) {
	case config.SourceTypeS3:
		return NewS3Source(cfg, rng)
	case config.SourceTypeFile, "":
		return NewFileSource(cfg, rng), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}

type slotRange struct {
	start uint64
	end   uint64
}

// contains reports whether the slot falls in the configured inclusive
// range. A zero end slot leaves the range unbounded above.
func (r slotRange) contains(slot uint64) bool {
	if slot < r.start {
		return false
	}
	return r.end == 0 || slot <= r.end
}

// decodeLines reads NDJSON records from r and forwards in-range ones to
// the records channel. Undecodable lines are counted and skipped; the
// upstream dump is append-only and a torn trailing line is expected.
func decodeLines(ctx context.Context, r io.Reader, records chan<- *common.TransactionRecord, rng slotRange) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		tx := &common.TransactionRecord{}
		if err := json.Unmarshal(line, tx); err != nil {
			metrics.SourceDecodeFailures.Inc()
			log.Warn().Err(err).Msg("Skipping undecodable source line")
			continue
		}
		metrics.SourceRecordsRead.Inc()

		if !rng.contains(tx.Slot) {
			continue
		}

		select {
		case records <- tx:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// fanOut runs the producer and N handler workers until the producer
// exhausts its input or the context is canceled. Each worker processes its
// records in order; no ordering holds across workers.
func fanOut(ctx context.Context, workers int, produce func(ctx context.Context, records chan<- *common.TransactionRecord) error, handler Handler) error {
	if workers <= 0 {
		workers = defaultWorkers
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan *common.TransactionRecord, recordBuffer)
	prodErrCh := make(chan error, 1)
	go func() {
		defer close(records)
		prodErrCh <- produce(ctx, records)
	}()

	var wg sync.WaitGroup
	workerErrCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tx := range records {
				if err := handler(ctx, tx); err != nil {
					workerErrCh <- err
					cancel()
					return
				}
			}
		}()
	}
	wg.Wait()

	select {
	case err := <-workerErrCh:
		return err
	default:
	}

	if err := <-prodErrCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}
