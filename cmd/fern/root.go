package main

import (
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/config"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fern",
		Short: "fern - MOOC activity knowledge graph and recommendations",
		Long: `fern loads MOOC activity logs into a Neo4j knowledge graph and derives
recommendations from it:

  seed     reconcile the input folder and write it into the graph
  skips    segments learners tend to skip
  speeds   playback speeds learners settle on
  similar  similar users, courses or videos from graph embeddings`,
		SilenceUsage: true,
		Version:      version,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("data", "", "Input folder (overrides DATA_FOLDER)")
	flags.Int("limit", 0, "Keep only the first N activity records (overrides USER_VIDEO_ACT_LIMIT)")
	flags.Bool("offline", false, "Use an in-memory graph seeded from the input folder instead of Neo4j")
	flags.String("log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newSeedCmd(),
		newSkipsCmd(),
		newSpeedsCmd(),
		newSimilarCmd(),
		newConvertCmd(),
		newSubsetCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// loadConfig reads the environment and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataFolder, _ = flags.GetString("data")
	}
	if flags.Changed("limit") {
		cfg.UserVideoActLimit, _ = flags.GetInt("limit")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("reseed") {
		reseed, _ := flags.GetBool("reseed")
		cfg.Reseed = "false"
		if reseed {
			cfg.Reseed = "true"
		}
	}
	if flags.Changed("skip-rate-threshold") {
		cfg.SkipRateThreshold, _ = flags.GetFloat64("skip-rate-threshold")
	}
	if flags.Changed("percentage-threshold") {
		cfg.SkipPercentageThreshold, _ = flags.GetFloat64("percentage-threshold")
	}
	if flags.Changed("min-skipped") {
		cfg.MinSkipped, _ = flags.GetInt("min-skipped")
	}
	if flags.Changed("threshold-number") {
		cfg.ThresholdNumber, _ = flags.GetInt("threshold-number")
	}
	if flags.Changed("threshold-percentage") {
		cfg.ThresholdPercentage, _ = flags.GetFloat64("threshold-percentage")
	}
	if flags.Changed("top-k") {
		cfg.SimilarityTopK, _ = flags.GetInt("top-k")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isOffline(cmd *cobra.Command) bool {
	offline, _ := cmd.Flags().GetBool("offline")
	return offline
}
