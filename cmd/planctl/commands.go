package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Dan9191/investment-advisor/internal/advisor"
	"github.com/Dan9191/investment-advisor/internal/config"
	"github.com/Dan9191/investment-advisor/internal/integrations/inflation"
	"github.com/Dan9191/investment-advisor/internal/integrations/marketdata"
	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/Dan9191/investment-advisor/internal/planner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// offlineRates serves the default rate table without network calls.
type offlineRates struct{}

func (offlineRates) FetchRates(ctx context.Context) models.RateTable { return models.DefaultRateTable() }

// offlineInflation serves the default inflation table without network calls.
type offlineInflation struct{}

func (offlineInflation) FetchInflation(ctx context.Context) models.InflationTable {
	return models.DefaultInflationTable()
}

type profileFlags struct {
	age      int
	salary   float64
	expenses float64
	offline  bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "planctl",
		Short:        "Compute investment plans from the command line",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newProjectCmd())
	return rootCmd
}

func newPlanCmd() *cobra.Command {
	var (
		flags profileFlags
		risk  string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build an investment plan for a profile and risk category",
		Example: `  planctl plan --age 30 --salary 50000 --expenses 10000 --risk Low
  planctl plan --age 45 --salary 120000 --expenses 40000 --risk High --offline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := models.ParseRiskCategory(risk)
			if err != nil {
				return err
			}
			engine, err := newEngine(cmd, flags.offline)
			if err != nil {
				return err
			}
			profile := models.NewUserProfile(flags.age, flags.salary, flags.expenses)
			plan, err := engine.Build(cmd.Context(), profile, category)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), plan)
		},
	}
	addProfileFlags(cmd, &flags)
	cmd.Flags().StringVar(&risk, "risk", "", "Risk category: Low, Medium or High")
	_ = cmd.MarkFlagRequired("risk")
	return cmd
}

func newRecommendCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show inflation-adjusted ten-year outlooks per country",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(cmd, offline)
			if err != nil {
				return err
			}
			rates, inflationTable := engine.FetchMarket(cmd.Context())
			recs, warnings := planner.Recommend(inflationTable, rates, planner.RecommendationPrincipal)
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Use default rates and inflation without network calls")
	return cmd
}

func newProjectCmd() *cobra.Command {
	var (
		principal string
		rate      float64
		years     int
	)
	cmd := &cobra.Command{
		Use:     "project",
		Short:   "Compound a principal at an annual rate",
		Example: `  planctl project --principal "₹10,000" --rate 12 --years 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := planner.ProjectText(principal, rate, years)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), models.Money(v))
			return err
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "Principal amount, plain or currency formatted")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Annual rate in percent")
	cmd.Flags().IntVar(&years, "years", 1, "Horizon in years: 1, 3, 5 or 10")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}

func addProfileFlags(cmd *cobra.Command, flags *profileFlags) {
	cmd.Flags().IntVar(&flags.age, "age", 0, "Age in years")
	cmd.Flags().Float64Var(&flags.salary, "salary", 0, "Monthly salary")
	cmd.Flags().Float64Var(&flags.expenses, "expenses", 0, "Total monthly expenses")
	cmd.Flags().BoolVar(&flags.offline, "offline", false, "Skip every upstream call and use the fallback plan")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("salary")
	_ = cmd.MarkFlagRequired("expenses")
}

func newEngine(cmd *cobra.Command, offline bool) (*planner.Engine, error) {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(logrus.WarnLevel)
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if offline {
		return planner.NewEngine(offlineRates{}, offlineInflation{}, nil, planner.BasisTotal, 0, log), nil
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	adviceSource, err := advisor.New(cfg, log)
	if err != nil {
		return nil, err
	}
	return planner.NewEngine(
		marketdata.NewClient(cfg, log),
		inflation.NewClient(cfg, log),
		adviceSource,
		planner.ParseBasis(cfg.ProjectionBasis),
		cfg.AdvisorTimeout,
		log,
	), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
