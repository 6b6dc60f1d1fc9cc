package cmd

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/moodsense/pkg/billing"
)

// CostOutput is the machine-readable result of 'cost'.
type CostOutput struct {
	Deployment         billing.Deployment    `json:"deployment"`
	PerRequest         billing.RequestCost   `json:"per_request"`
	FreeTierDailyLimit float64               `json:"free_tier_daily_limit"`
	Scenarios          []billing.MonthlyCost `json:"scenarios"`
}

type costFlags struct {
	output         string
	cpus           float64
	memoryGiB      float64
	duration       time.Duration
	requestsPerDay int
}

// NewCostCommand creates the 'cost' command.
func NewCostCommand(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var f costFlags

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Estimate monthly serverless cost",
		Long: `Estimate the monthly cost of running the analysis server on a
pay-per-use container platform.

Pricing is per vCPU-second, per GiB-second and per million requests, after
the monthly free tier. A share of requests is assumed to be cold starts that
run longer than the average analysis.`,
		Example: `  # Default scenarios with the default deployment
  moodsense cost

  # One vCPU, 1 GiB, 45s analyses at 500 requests per day
  moodsense cost --cpus 1 --memory 1 --duration 45s --requests-per-day 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			format, err := resolveFormat(f.output, cfg)
			if err != nil {
				return err
			}

			dep := billing.DefaultDeployment()
			if cfg.Billing.CPUs > 0 {
				dep.CPUs = cfg.Billing.CPUs
			}
			if cfg.Billing.MemoryGiB > 0 {
				dep.MemoryGiB = cfg.Billing.MemoryGiB
			}
			if f.cpus > 0 {
				dep.CPUs = f.cpus
			}
			if f.memoryGiB > 0 {
				dep.MemoryGiB = f.memoryGiB
			}
			if f.duration > 0 {
				dep.AvgDuration = f.duration
			}
			if f.requestsPerDay < 0 {
				return fmt.Errorf("--requests-per-day must not be negative")
			}

			scenarios := billing.DefaultScenarios()
			if f.requestsPerDay > 0 {
				scenarios = []billing.Scenario{{
					Name:           "custom",
					RequestsPerDay: f.requestsPerDay,
					Days:           billing.DefaultDaysInMonth,
				}}
			}

			out := CostOutput{
				Deployment:         dep,
				PerRequest:         billing.EstimateRequest(dep.AvgDuration, dep.CPUs, dep.MemoryGiB),
				FreeTierDailyLimit: billing.FreeTierDailyLimit(dep),
			}
			for _, s := range scenarios {
				out.Scenarios = append(out.Scenarios, billing.EstimateMonth(dep, s))
			}

			if math.IsInf(out.FreeTierDailyLimit, 0) {
				out.FreeTierDailyLimit = 0
			}

			return writeOutput(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
				return printCost(w, out)
			})
		},
	}

	outputFlag(cmd, &f.output)
	cmd.Flags().Float64Var(&f.cpus, "cpus", 0, "vCPUs per instance (default 2)")
	cmd.Flags().Float64Var(&f.memoryGiB, "memory", 0, "Memory per instance in GiB (default 2)")
	cmd.Flags().DurationVar(&f.duration, "duration", 0, "Average analysis duration (default 60s)")
	cmd.Flags().IntVar(&f.requestsPerDay, "requests-per-day", 0, "Price a single custom scenario")

	return cmd
}

func printCost(w io.Writer, out CostOutput) error {
	dep := out.Deployment
	fmt.Fprintf(w, "Deployment: %g vCPU, %g GiB, %s per analysis, %d%% cold starts (+%s)\n",
		dep.CPUs, dep.MemoryGiB, dep.AvgDuration, dep.ColdStartPercent, dep.ColdStart)
	fmt.Fprintf(w, "Per request (before free tier): EUR %.6f\n", out.PerRequest.Total)
	if out.FreeTierDailyLimit > 0 {
		fmt.Fprintf(w, "Free tier covers about %.0f requests per day\n", out.FreeTierDailyLimit)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tREQ/DAY\tREQ/MONTH\tVCPU-S\tGIB-S\tFREE TIER\tEUR/MONTH")
	fmt.Fprintln(tw, "--------\t-------\t---------\t------\t-----\t---------\t---------")
	for _, m := range out.Scenarios {
		free := "no"
		if m.WithinFreeTier {
			free = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f\t%.0f\t%s\t%.4f\n",
			m.Scenario.Name, m.Scenario.RequestsPerDay, m.Requests,
			m.CPUSeconds, m.GiBSeconds, free, m.TotalEUR)
	}
	return tw.Flush()
}
