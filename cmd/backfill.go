package cmd

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	config "github.com/zhivkoto/uho-indexing/configs"
	"github.com/zhivkoto/uho-indexing/internal/backfill"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "run backfill",
	Long:  "stream the configured slot range through the program filter and emit matching transactions as NDJSON on stdout",
	Run:   RunBackfill,
}

func RunBackfill(cmd *cobra.Command, args []string) {
	if config.Cfg.Metrics.Enabled {
		port := config.Cfg.Metrics.Port
		log.Info().Msgf("Starting Metrics Server on port %d", port)
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
				log.Error().Err(err).Msg("Metrics server error")
			}
		}()
	}

	if err := backfill.Run(); err != nil {
		log.Fatal().Err(err).Msg("Backfill failed")
	}
}
