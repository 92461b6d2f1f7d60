package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	configs "github.com/zhivkoto/uho-indexing/configs"
	customLogger "github.com/zhivkoto/uho-indexing/internal/log"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "uho-backfill",
		Short: "Stream historical Solana transactions filtered by program ID",
		Long:  "Streams already-decoded historical Solana transactions from a dump source, filters them by program ID and emits matching ones as NDJSON on stdout. Progress telemetry goes to stderr.",
		Run: func(cmd *cobra.Command, args []string) {
			RunBackfill(cmd, args)
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	rootCmd.PersistentFlags().String("program", "", "Solana program ID (base58) to filter transactions by")
	rootCmd.PersistentFlags().Uint64("start-slot", 0, "Starting slot (inclusive)")
	rootCmd.PersistentFlags().Uint64("end-slot", 0, "Ending slot (inclusive, 0 means unbounded)")
	rootCmd.PersistentFlags().Int("threads", 4, "Number of filter workers")
	rootCmd.PersistentFlags().Uint64("report-threshold", 100000, "How many processed transactions between progress lines")
	rootCmd.PersistentFlags().String("source", "file", "Transaction source type (file or s3)")
	rootCmd.PersistentFlags().String("source-file-path", "", "Path to an NDJSON transaction dump, empty or - reads stdin")
	rootCmd.PersistentFlags().String("source-s3-bucket", "", "S3 bucket holding NDJSON transaction dumps")
	rootCmd.PersistentFlags().String("source-s3-prefix", "", "Key prefix of the transaction dumps in the bucket")
	rootCmd.PersistentFlags().String("source-s3-region", "", "AWS region of the bucket")
	rootCmd.PersistentFlags().Bool("publisher-enabled", false, "Whether to mirror matched records to Kafka")
	rootCmd.PersistentFlags().String("publisher-brokers", "", "Kafka brokers, comma separated")
	rootCmd.PersistentFlags().String("publisher-topic", "", "Kafka topic for matched records")
	rootCmd.PersistentFlags().String("publisher-username", "", "Kafka SASL username")
	rootCmd.PersistentFlags().String("publisher-password", "", "Kafka SASL password")
	rootCmd.PersistentFlags().Bool("metrics-enabled", false, "Whether to serve Prometheus metrics")
	rootCmd.PersistentFlags().Int("metrics-port", 2112, "Port for the Prometheus metrics server")
	rootCmd.PersistentFlags().String("log-level", "", "Log level to use for the application")
	rootCmd.PersistentFlags().Bool("log-prettify", false, "Whether to prettify the log output")
	viper.BindPFlag("filter.program", rootCmd.PersistentFlags().Lookup("program"))
	viper.BindPFlag("range.startSlot", rootCmd.PersistentFlags().Lookup("start-slot"))
	viper.BindPFlag("range.endSlot", rootCmd.PersistentFlags().Lookup("end-slot"))
	viper.BindPFlag("source.workers", rootCmd.PersistentFlags().Lookup("threads"))
	viper.BindPFlag("reporter.threshold", rootCmd.PersistentFlags().Lookup("report-threshold"))
	viper.BindPFlag("source.type", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("source.file.path", rootCmd.PersistentFlags().Lookup("source-file-path"))
	viper.BindPFlag("source.s3.bucket", rootCmd.PersistentFlags().Lookup("source-s3-bucket"))
	viper.BindPFlag("source.s3.prefix", rootCmd.PersistentFlags().Lookup("source-s3-prefix"))
	viper.BindPFlag("source.s3.region", rootCmd.PersistentFlags().Lookup("source-s3-region"))
	viper.BindPFlag("publisher.enabled", rootCmd.PersistentFlags().Lookup("publisher-enabled"))
	viper.BindPFlag("publisher.brokers", rootCmd.PersistentFlags().Lookup("publisher-brokers"))
	viper.BindPFlag("publisher.topic", rootCmd.PersistentFlags().Lookup("publisher-topic"))
	viper.BindPFlag("publisher.username", rootCmd.PersistentFlags().Lookup("publisher-username"))
	viper.BindPFlag("publisher.password", rootCmd.PersistentFlags().Lookup("publisher-password"))
	viper.BindPFlag("metrics.enabled", rootCmd.PersistentFlags().Lookup("metrics-enabled"))
	viper.BindPFlag("metrics.port", rootCmd.PersistentFlags().Lookup("metrics-port"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.prettify", rootCmd.PersistentFlags().Lookup("log-prettify"))
	rootCmd.AddCommand(backfillCmd)
}

func initConfig() {
	configs.LoadConfig(cfgFile)
	customLogger.InitLogger()
}
