package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safetyshield/saferoute/internal/hazard"
)

var (
	hazardsShapefile string
	hazardsBucket    string
)

var hazardsCmd = &cobra.Command{
	Use:   "hazards",
	Short: "Manage the local hazard observation store",
}

var hazardsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the hazard store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("hazards"); err != nil {
			return err
		}

		store, err := hazard.NewSQLite(cfg.Hazard.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		if err := store.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "hazard store ready at %s\n", cfg.Hazard.SQLitePath)
		return nil
	},
}

var hazardsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load crime observation points from a shapefile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("hazards"); err != nil {
			return err
		}

		bucket, err := hazard.ParseBucket(hazardsBucket)
		if err != nil {
			return err
		}
		if bucket == hazard.BucketCurrent {
			bucket = bucket.Resolve(time.Now())
		}

		points, err := hazard.ParseShapefile(hazardsShapefile)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			return fmt.Errorf("no point records in %s", hazardsShapefile)
		}

		store, err := hazard.NewSQLite(cfg.Hazard.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		ctx := cmd.Context()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		if err := store.InsertPoints(ctx, bucket, points); err != nil {
			return err
		}

		zap.L().Info("imported hazard observations",
			zap.String("shapefile", hazardsShapefile),
			zap.String("bucket", string(bucket)),
			zap.Int("points", len(points)),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d points into bucket %s\n", len(points), bucket)
		return nil
	},
}

func init() {
	hazardsImportCmd.Flags().StringVar(&hazardsShapefile, "shapefile", "", "path to the .shp file (required)")
	hazardsImportCmd.Flags().StringVar(&hazardsBucket, "bucket", "night", "time bucket to file the observations under")
	_ = hazardsImportCmd.MarkFlagRequired("shapefile")

	hazardsCmd.AddCommand(hazardsInitCmd)
	hazardsCmd.AddCommand(hazardsImportCmd)
	rootCmd.AddCommand(hazardsCmd)
}
