package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"covidlab/internal/config"
	"covidlab/internal/viz"
	"covidlab/pkg/contracts/domain"
)

// seriesRows is how many trailing dates an area listing shows
const seriesRows = 10

func areaCmd(use, short string, nargs cobra.PositionalArgs, series func(*session, []string) (*domain.CaseSeries, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  nargs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			cs, err := series(s, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(s.out, cs.Name)
			viz.WriteSeries(s.out, cs, seriesRows)
			if !s.plot {
				return nil
			}
			path, err := s.plotter.PlotCases(cmd.Context(), cs)
			if err != nil {
				return err
			}
			s.log.Info("Chart written", "path", path)
			return nil
		},
	}
}

func newCountryCmd() *cobra.Command {
	return areaCmd("country <name>", "Case history of one country", cobra.ExactArgs(1),
		func(s *session, args []string) (*domain.CaseSeries, error) {
			return s.data.CountrySeries(args[0])
		})
}

func newContinentCmd() *cobra.Command {
	return areaCmd("continent <name>", "Case history summed over a continent", cobra.ExactArgs(1),
		func(s *session, args []string) (*domain.CaseSeries, error) {
			return s.data.ContinentSeries(args[0])
		})
}

func newWorldCmd() *cobra.Command {
	return areaCmd("world", "Case history summed over every country", cobra.NoArgs,
		func(s *session, _ []string) (*domain.CaseSeries, error) {
			return s.data.WorldSeries(), nil
		})
}

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "top <metric>",
		Short:     fmt.Sprintf("Countries with the most cases of a metric (above %d confirmed)", viz.DefaultMostCasesMinCases),
		Args:      cobra.ExactArgs(1),
		ValidArgs: domain.CaseMetrics,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := cmd.Flags().GetInt("n")
			if err != nil {
				return fmt.Errorf("failed to get n flag: %w", err)
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ranked, err := s.data.MostCases(args[0], n)
			if err != nil {
				return err
			}
			viz.WriteRanking(s.out, args[0], ranked)
			if !s.plot {
				return nil
			}
			path, err := s.plotter.PlotTop(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			s.log.Info("Chart written", "path", path)
			return nil
		},
	}
	cmd.Flags().Int("n", config.DefaultTopN, "number of countries")
	return cmd
}

func newMortalityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mortality",
		Short: "Countries with the highest mortality rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := cmd.Flags().GetInt("n")
			if err != nil {
				return fmt.Errorf("failed to get n flag: %w", err)
			}
			minCases, err := cmd.Flags().GetFloat64("min-cases")
			if err != nil {
				return fmt.Errorf("failed to get min-cases flag: %w", err)
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			ranked, err := s.data.HighestMortality(n, minCases)
			if err != nil {
				return err
			}
			viz.WriteRanking(s.out, domain.MetricMortality, ranked)
			return nil
		},
	}
	cmd.Flags().Int("n", config.DefaultTopN, "number of countries")
	cmd.Flags().Float64("min-cases", viz.DefaultMortalityMinCases, "only countries with more confirmed cases")
	return cmd
}

func newChangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change <country>",
		Short: "Daily new cases of a country with a rolling average",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := cmd.Flags().GetInt("window")
			if err != nil {
				return fmt.Errorf("failed to get window flag: %w", err)
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			values, ok := s.data.DailyChange.Column(args[0])
			if !ok {
				return fmt.Errorf("country %q not found", args[0])
			}
			avg := viz.RollingMean(values, window)
			if last := len(values) - 1; last >= 0 {
				fmt.Fprintf(s.out, "%s %s: %s new cases, %d day average %s\n", args[0],
					s.data.DailyChange.Dates[last].Format(config.DateLayout),
					formatValue(values[last]), window, formatValue(avg[last]))
			}
			if !s.plot {
				return nil
			}
			path, err := s.plotter.PlotChange(cmd.Context(), args[0], window)
			if err != nil {
				return err
			}
			s.log.Info("Chart written", "path", path)
			return nil
		},
	}
	cmd.Flags().Int("window", 7, "rolling average window in days")
	return cmd
}

func newGrowthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "growth <country>...",
		Short: "Growth since the threshold day against doubling curves, log scale",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			periods, err := cmd.Flags().GetIntSlice("periods")
			if err != nil {
				return fmt.Errorf("failed to get periods flag: %w", err)
			}
			steps, err := cmd.Flags().GetInt("steps")
			if err != nil {
				return fmt.Errorf("failed to get steps flag: %w", err)
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			curves, err := s.data.GrowthCurves(periods, steps)
			if err != nil {
				return err
			}
			for _, c := range curves {
				fmt.Fprintf(s.out, "%s: day %d at %s\n", c.Label, steps-1, formatValue(c.Values[steps-1]))
			}
			if !s.plot {
				return nil
			}
			path, err := s.plotter.PlotGrowth(cmd.Context(), args, periods, steps)
			if err != nil {
				return err
			}
			s.log.Info("Chart written", "path", path)
			return nil
		},
	}
	cmd.Flags().IntSlice("periods", []int{1, 2, 3, 7}, "doubling periods in days")
	cmd.Flags().Int("steps", 50, "number of days to draw")
	return cmd
}

func newScatterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scatter <x column> <y column>",
		Short: "Regress two columns of the socioeconomic dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			if !s.plot {
				sc, err := s.data.Regress(args[0], args[1])
				if err != nil {
					return err
				}
				viz.WriteFit(s.out, sc)
				return nil
			}
			sc, path, err := s.plotter.PlotScatter(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			viz.WriteFit(s.out, sc)
			s.log.Info("Chart written", "path", path)
			return nil
		},
	}
}

func newCorrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "corr",
		Short: "Correlation matrix of the socioeconomic dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			viz.WriteCorrelation(s.out, s.data.Correlation())
			return nil
		},
	}
}

func formatValue(v float64) string {
	if domain.IsMissing(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", v)
}
