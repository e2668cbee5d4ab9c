package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/scheduler"
)

type planOutput struct {
	Summary domain.PlanSummary `json:"summary"`
	Counts  []int              `json:"counts"`
}

func newPlanCmd() *cobra.Command {
	var (
		flags  planFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Select the most even plan and print per-student counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			plan, err := flags.selectPlan()
			if err != nil {
				return err
			}
			slog.Info("plan selected", "generator", plan.Kind.String(), "seed", plan.Seed, "elapsed", time.Since(start))

			counts, err := scheduler.Counts(plan.Pool, flags.n)
			if err != nil {
				return err
			}
			out := planOutput{Summary: plan.Summary("", flags.n), Counts: counts}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return printPlan(cmd, out)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

func printPlan(cmd *cobra.Command, out planOutput) error {
	s := out.Summary
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "generator: %s seed: %d\n", s.Generator, s.Seed)
	fmt.Fprintf(w, "pool: %d expected: %.2f std: %.3f range: %.2f..%.2f\n",
		s.PoolSize, s.Expected, s.StdDev, s.RangeLow, s.RangeHigh)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "number\tplanned")
	for slot, count := range out.Counts {
		fmt.Fprintf(tw, "%d\t%d\n", slot+1, count)
	}
	return tw.Flush()
}
