package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/infrastructure/randomizer"
	"fair-draw-service/internal/scheduler"
	"fair-draw-service/internal/service"
)

func newDrawCmd() *cobra.Command {
	var (
		flags       planFlags
		names       []string
		absent      []string
		count       int
		shuffleSeed int64
		keepOrder   bool
	)
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Simulate a round of calls with the selected plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := flags.selectPlan()
			if err != nil {
				return err
			}
			pool := append([]int(nil), plan.Pool...)
			if !keepOrder {
				randomizer.ShuffleInts(randomizer.New(shuffleSeed), pool)
			}
			round, err := scheduler.NewRound(pool, flags.n)
			if err != nil {
				return err
			}

			roster := service.NormalizeNames(names, flags.n)
			absentSet := service.AbsentSlots(roster, absent)
			w := cmd.OutOrStdout()
			for i := 0; count == 0 || i < count; i++ {
				slot, err := round.Draw(absentSet)
				if errors.Is(err, domain.ErrExhaustedPool) {
					fmt.Fprintln(w, "pool exhausted")
					break
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d\t%d\t%s\n", i+1, slot+1, roster[slot])
			}
			fmt.Fprintf(w, "remaining: %d\n", round.Remaining(absentSet))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVar(&names, "names", nil, "Student names in roster order")
	cmd.Flags().StringSliceVar(&absent, "absent", nil, "Names of absent students")
	cmd.Flags().IntVar(&count, "count", 0, "Number of calls (0 draws until the pool is exhausted)")
	cmd.Flags().Int64Var(&shuffleSeed, "shuffle-seed", 0, "Seed for pool shuffling (0 uses the clock)")
	cmd.Flags().BoolVar(&keepOrder, "keep-order", false, "Consume the pool in generator order")
	return cmd
}
