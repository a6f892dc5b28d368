package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/report"
	"github.com/Ramsey-B/fern/pkg/seeding"
)

// withApp wires an app for the command, runs fn and tears the app down.
func withApp(cmd *cobra.Command, opts appOptions, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts.offline = isOffline(cmd)
	a, err := newApp(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	if err := fn(ctx, a); err != nil {
		a.logger.WithContext(ctx).WithError(err).Error("Command failed")
		return err
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reconcile the input folder and write it into the graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
				ds, err := a.loadDataset()
				if err != nil {
					return err
				}
				res, err := a.service.Seed(ctx, ds, a.cfg.ShouldReseed())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				switch res.Outcome {
				case seeding.OutcomeSkipped:
					fmt.Fprintln(out, "Database already seeded. Skipping seeding.")
				default:
					fmt.Fprintln(out, "Knowledge graph seeded successfully.")
					fmt.Fprintf(out, "Users: %d, Courses: %d, Videos: %d, Segments: %d, Watched: %d, Skipped relationships: %d\n",
						res.Nodes[models.KindUser], res.Nodes[models.KindCourse], res.Nodes[models.KindVideo],
						res.Nodes[models.KindSegment], res.Relationships[models.RelWatched], res.Dangling)
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("reseed", false, "Clear and rewrite an already seeded graph (overrides RESEED)")
	return cmd
}

func newSkipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skips",
		Short: "List segments learners tend to skip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			useRules, _ := cmd.Flags().GetBool("rules")
			asJSON, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, appOptions{useRules: useRules}, func(ctx context.Context, a *app) error {
				if err := a.prepareReads(ctx); err != nil {
					return err
				}
				r, err := a.service.SegmentSkips(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), r)
				}
				return report.SegmentSkips(cmd.OutOrStdout(), r, a.service.Options().Skip)
			})
		},
	}
	cmd.Flags().Bool("rules", false, "Derive recommendations through the rules program")
	cmd.Flags().Bool("json", false, "Print JSON instead of text")
	cmd.Flags().Float64("skip-rate-threshold", 0, "HighSkipRate lower bound (overrides SKIP_RATE_THRESHOLD)")
	cmd.Flags().Float64("percentage-threshold", 0, "Percentage listing lower bound (overrides SKIP_PERCENTAGE_THRESHOLD)")
	cmd.Flags().Int("min-skipped", 0, "Count listing lower bound (overrides MIN_SKIPPED)")
	return cmd
}

func newSpeedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speeds",
		Short: "List recommended playback speeds per video",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
				if err := a.prepareReads(ctx); err != nil {
					return err
				}
				recs, err := a.service.PlaybackSpeeds(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), recs)
				}
				return report.PlaybackSpeeds(cmd.OutOrStdout(), recs)
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print JSON instead of text")
	cmd.Flags().Int("threshold-number", 0, "Minimum distinct users per speed (overrides THRESHOLD_NUMBER)")
	cmd.Flags().Float64("threshold-percentage", 0, "Minimum share of a video's users per speed (overrides THRESHOLD_PERCENTAGE)")
	return cmd
}

func newSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar [projection...]",
		Short: "List similar pairs from graph embeddings",
		Long:  "Runs the named projections (courses, users, user-interactions, videos by default). Requires Neo4j with the Graph Data Science plugin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if isOffline(cmd) {
				return fmt.Errorf("similar needs the Graph Data Science plugin and cannot run offline")
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
				names := args
				if len(names) == 0 {
					names = a.catalog.Names()
				}
				for _, name := range names {
					res, err := a.service.Similar(ctx, name)
					if err != nil {
						return fmt.Errorf("projection %s: %w", name, err)
					}
					if asJSON {
						if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
							return err
						}
						continue
					}
					if err := report.Similar(cmd.OutOrStdout(), res); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print JSON instead of text")
	cmd.Flags().Int("top-k", 0, "Neighbours per node (overrides SIMILARITY_TOP_K)")
	return cmd
}
