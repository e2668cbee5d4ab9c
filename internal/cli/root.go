// Package cli реализует drawctl: подбор плана и симуляцию раунда без сервера и БД.
package cli

import (
	"github.com/spf13/cobra"

	"fair-draw-service/internal/config"
	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/logging"
	"fair-draw-service/internal/scheduler"
	"fair-draw-service/internal/service"
)

// planFlags параметры поиска, общие для plan и draw.
type planFlags struct {
	k, l, n  int
	seedStep uint64
	seedMax  uint64
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.k, "k", config.DefaultK, "Number of lessons in the school year")
	cmd.Flags().IntVar(&f.l, "l", config.DefaultL, "Average number of calls per lesson")
	cmd.Flags().IntVar(&f.n, "n", config.DefaultN, "Class size")
	cmd.Flags().Uint64Var(&f.seedStep, "seed-step", scheduler.DefaultSeedStep, "Step between candidate seeds")
	cmd.Flags().Uint64Var(&f.seedMax, "seed-max", scheduler.DefaultSeedMax, "Last candidate seed (inclusive)")
}

// selectPlan применяет те же ограничения на k, l, n, что и сервис.
func (f *planFlags) selectPlan() (scheduler.Plan, error) {
	if err := service.ValidateParams(domain.Params{K: f.k, L: f.l, N: f.n}); err != nil {
		return scheduler.Plan{}, err
	}
	return scheduler.NewSearcher(f.seedStep, f.seedMax).Select(f.k, f.l, f.n)
}

// NewRootCmd создаёт корневую команду drawctl.
func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "drawctl",
		Short: "Offline plan search and draw simulation",
		Long:  "drawctl selects the most even draw plan for a class and simulates a school year of calls.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logging.Setup(config.LoggingConfig{Level: logLevel, Output: "stderr"})
			return err
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newPlanCmd(),
		newDrawCmd(),
	)
	return root
}
