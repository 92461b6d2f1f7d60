package pipeline

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/zhivkoto/uho-indexing/internal/common"
	"github.com/zhivkoto/uho-indexing/internal/emitter"
	"github.com/zhivkoto/uho-indexing/internal/filter"
	customLogger "github.com/zhivkoto/uho-indexing/internal/log"
	"github.com/zhivkoto/uho-indexing/internal/metrics"
	"github.com/zhivkoto/uho-indexing/internal/stats"
)

// Emitter writes one matched record as a single atomic output line.
type Emitter interface {
	Emit(record common.OutputRecord) error
}

// MatchPublisher mirrors matched records to a message broker.
type MatchPublisher interface {
	PublishMatch(ctx context.Context, record common.OutputRecord) error
}

// Sink persists matched records in secondary storage.
type Sink interface {
	Insert(ctx context.Context, record common.OutputRecord) error
}

var _ Emitter = (*emitter.Emitter)(nil)

// Pipeline is the per-record dispatch callback. It is the only place where
// matcher, counters and emitter compose, and it is invoked concurrently,
// once per record, by independent source workers.
type Pipeline struct {
	matcher   *filter.Matcher
	tracker   *stats.Tracker
	emitter   Emitter
	publisher MatchPublisher
	sink      Sink
	logger    zerolog.Logger
}

// NewPipeline wires the dispatch callback. publisher and sink may be nil
// when the corresponding integration is disabled.
func NewPipeline(matcher *filter.Matcher, tracker *stats.Tracker, em Emitter, pub MatchPublisher, sink Sink) *Pipeline {
	return &Pipeline{
		matcher:   matcher,
		tracker:   tracker,
		emitter:   em,
		publisher: pub,
		sink:      sink,
		logger:    customLogger.NewLogger("pipeline"),
	}
}

// OnTransaction handles exactly one record: classify, count, report, and
// on a match project-and-emit. A record is either fully skipped or fully
// counted-and-emitted; there is no partially applied state to roll back.
//
// Serialization failure policy: skip-and-log. A matched record that cannot
// be rendered is dropped with an error line and a metrics bump, and the run
// continues. Aborting a multi-day backfill over one bad record costs more
// than the record is worth.
func (p *Pipeline) OnTransaction(ctx context.Context, tx *common.TransactionRecord) error {
	matched := p.matcher.Matches(tx)

	processed := p.tracker.RecordSeen(tx.Slot)
	p.tracker.MaybeReport(processed)

	if !matched {
		return nil
	}

	p.tracker.RecordMatched()
	record := common.NewOutputRecord(tx)

	if err := p.emitter.Emit(record); err != nil {
		p.logger.Error().Err(err).Str("signature", tx.Signature).Msg("Dropping matched record that could not be emitted")
		metrics.SerializationFailures.Inc()
		return nil
	}

	if p.publisher != nil {
		if err := p.publisher.PublishMatch(ctx, record); err != nil {
			p.logger.Error().Err(err).Str("signature", tx.Signature).Msg("Failed to publish matched record")
		}
	}

	if p.sink != nil {
		if err := p.sink.Insert(ctx, record); err != nil {
			p.logger.Error().Err(err).Str("signature", tx.Signature).Msg("Failed to store matched record")
		}
	}

	return nil
}

// Done signals that the source exhausted the configured range.
func (p *Pipeline) Done() {
	p.tracker.Done()
}
