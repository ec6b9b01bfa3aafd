package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jengzang/mobility-metrics-go/internal/service"
	"github.com/spf13/cobra"
)

var optShowDataset string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the summary of a processed dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.service.Summary(cmd.Context(), optShowDataset)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&optShowDataset, "dataset", "d", "", "dataset name")
	_ = showCmd.MarkFlagRequired("dataset")
}

func printSummary(w io.Writer, s *service.DatasetSummary) {
	cfg := s.Config
	fmt.Fprintf(w, "dataset %q (%s), created %s\n", cfg.DatasetName, cfg.Label,
		humanize.Time(time.Unix(cfg.CreatedAt, 0)))
	fmt.Fprintf(w, "  entities            %s\n", humanize.Comma(int64(s.Entities)))
	fmt.Fprintf(w, "  trace points        %s\n", humanize.Comma(int64(s.TracePoints)))
	fmt.Fprintf(w, "  median distance     %s\n", humanize.FormatFloat("#,###.##", s.MedianTravelDistance))
	fmt.Fprintf(w, "  median gyration     %s\n", humanize.FormatFloat("#,###.##", s.MedianRadiusOfGyration))
	fmt.Fprintf(w, "  p90 speed           %s\n", humanize.FormatFloat("#,###.####", s.P90TravelAvgSpeed))

	g := s.Global
	if g == nil {
		fmt.Fprintln(w, "  no global metrics")
		return
	}
	fmt.Fprintf(w, "  stay points         %s (%s visits)\n", humanize.Comma(int64(g.NumStayPoints)), humanize.Comma(int64(g.NumStayPointsVisits)))
	fmt.Fprintf(w, "  journeys            %s\n", humanize.Comma(int64(g.NumJourneys)))
	fmt.Fprintf(w, "  contacts            %s\n", humanize.Comma(int64(g.NumContacts)))
	fmt.Fprintf(w, "  spatial cover       %d cells\n", g.TotalSpatialCover)
	fmt.Fprintf(w, "  correlation         %.4f\n", g.TrajectoryCorrelation)
	fmt.Fprintf(w, "  mobility profile    %.4f\n", g.MobilityProfile)
}
