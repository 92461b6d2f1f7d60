package backfill

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	config "github.com/zhivkoto/uho-indexing/configs"
	"github.com/zhivkoto/uho-indexing/internal/emitter"
	"github.com/zhivkoto/uho-indexing/internal/filter"
	"github.com/zhivkoto/uho-indexing/internal/pipeline"
	"github.com/zhivkoto/uho-indexing/internal/publisher"
	"github.com/zhivkoto/uho-indexing/internal/source"
	"github.com/zhivkoto/uho-indexing/internal/stats"
	"github.com/zhivkoto/uho-indexing/internal/storage"
)

// Run wires the filter pipeline to the configured source and streams the
// slot range to completion. The DONE line is only written when the source
// exhausts the range; an interrupted or failed run ends without it so the
// downstream consumer can tell the difference.
func Run() error {
	matcher, err := filter.NewMatcher(config.Cfg.Filter.Program)
	if err != nil {
		return err
	}

	tracker := stats.NewTracker(config.Cfg.Reporter.Threshold, os.Stderr)
	em := emitter.NewEmitter(os.Stdout)

	var pub pipeline.MatchPublisher
	if config.Cfg.Publisher.Enabled {
		kafkaPublisher := publisher.GetInstance()
		defer kafkaPublisher.Close()
		pub = kafkaPublisher
	}

	var sink pipeline.Sink
	if config.Cfg.Storage.Clickhouse != nil && config.Cfg.Storage.Clickhouse.Host != "" {
		chSink, err := storage.NewClickHouseSink(config.Cfg.Storage.Clickhouse)
		if err != nil {
			return err
		}
		defer chSink.Close()
		sink = chSink
	}

	p := pipeline.NewPipeline(matcher, tracker, em, pub, sink)

	src, err := source.NewSource(&config.Cfg.Source, &config.Cfg.Range)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		log.Info().Msgf("Received signal %v, stopping backfill", sig)
		cancel()
	}()

	log.Info().
		Str("program", matcher.Program().String()).
		Uint64("startSlot", config.Cfg.Range.StartSlot).
		Uint64("endSlot", config.Cfg.Range.EndSlot).
		Int("workers", config.Cfg.Source.Workers).
		Msg("Starting uho-backfill")

	if err := src.Stream(ctx, p.OnTransaction); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().
				Uint64("processed", tracker.Processed()).
				Uint64("matched", tracker.Matched()).
				Msg("Backfill canceled")
			return nil
		}
		return err
	}

	p.Done()
	log.Info().
		Uint64("processed", tracker.Processed()).
		Uint64("matched", tracker.Matched()).
		Uint64("lastSlot", tracker.LastSlot()).
		Msg("Backfill completed")
	return nil
}
