package main

import (
	"fmt"

	"token-radar/internal/radar/service"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover newly listed tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := newCore(cmd)
		if err != nil {
			return err
		}
		defer core.Close()

		res, err := core.Radar().Discover(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Discovered %d new tokens (%d total, %d previously known, source=%s)\n",
			len(res.NewTokens), res.TotalTokens, res.PreviousTokens, res.Source)
		for _, t := range res.NewTokens {
			fmt.Fprintf(out, "  %-10s %s\n", t.Symbol, t.Address)
		}
		return nil
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Find trending meme tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := newCore(cmd)
		if err != nil {
			return err
		}
		defer core.Close()

		tokens, source, err := core.Radar().Trending.Discover(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Found %d trending meme tokens (source=%s)\n", len(tokens), source)
		for i, t := range tokens {
			fmt.Fprintf(out, "%2d. %-10s score=%.2f volume=%.2f change24h=%.2f%% origin=%s\n",
				i+1, t.Symbol, t.TrendingScore, t.Volume24h, t.PriceChange24h, t.Origin)
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Score tracked tokens and print recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := newCore(cmd)
		if err != nil {
			return err
		}
		defer core.Close()

		_, report, source, err := core.Radar().Recommend(cmd.Context(), nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
		fmt.Fprintf(cmd.OutOrStdout(), "source=%s\n", source)
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Build the full dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := newCore(cmd)
		if err != nil {
			return err
		}
		defer core.Close()

		d, err := core.Radar().Dashboard(cmd.Context())
		if err != nil {
			return err
		}
		s := d.Summary
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "New tokens: %d\nTrending: %d\nTracked: %d\n", s.NewTokenCount, s.TrendingCount, s.TrackedTokens)
		fmt.Fprintf(out, "Total volume 24h: $%.2f\nTotal liquidity: $%.2f\nAverage score: %.2f\n", s.TotalVolume24h, s.TotalLiquidity, s.AvgScore)
		for rating, n := range s.RatingDistribution {
			fmt.Fprintf(out, "  %-12s %d\n", rating, n)
		}
		fmt.Fprintf(out, "source=%s\n", d.Source)
		return nil
	},
}

var (
	exportType   string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a report to the output directory",
	Long: `Export a report to the output directory.

Types: new-tokens, trending-memes, comparisons, recommendations, dashboard (json only).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := service.ExportFileName(exportType, exportFormat); err != nil {
			return err
		}
		core, err := newCore(cmd)
		if err != nil {
			return err
		}
		defer core.Close()

		path, source, err := core.Radar().Export(cmd.Context(), exportType, exportFormat)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (source=%s)\n", exportType, path, source)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportType, "type", service.ExportDashboard, "export type")
	exportCmd.Flags().StringVar(&exportFormat, "format", service.FormatJSON, "export format: json or csv")

	rootCmd.AddCommand(discoverCmd, trendingCmd, recommendCmd, dashboardCmd, exportCmd)
}
