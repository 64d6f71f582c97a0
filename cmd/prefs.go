package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wanderlist/wanderlist/internal/config"
)

var saveCmd = &cobra.Command{
	Use:   "save <destination-id>...",
	Short: "Add destinations to the saved list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := config.SaveDestination(id); err != nil {
				return err
			}
		}
		fmt.Printf("Saved %d destination(s)\n", len(args))
		return nil
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <destination-id>...",
	Short: "Add destinations to the rejected list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := config.RejectDestination(id); err != nil {
				return err
			}
		}
		fmt.Printf("Rejected %d destination(s)\n", len(args))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved and rejected destinations",
	Run: func(cmd *cobra.Command, args []string) {
		printDestinations()
		fmt.Println()
		printFilters()
	},
}

func printDestinations() {
	saved := config.SavedDestinations()
	rejected := config.RejectedDestinations()
	if len(saved) == 0 && len(rejected) == 0 {
		fmt.Println("No destinations yet. Use 'wander save <id>' to start a list.")
		return
	}
	if len(saved) > 0 {
		fmt.Println("Saved:")
		for _, id := range saved {
			fmt.Printf("  %s\n", id)
		}
	}
	if len(rejected) > 0 {
		fmt.Println("Rejected:")
		for _, id := range rejected {
			fmt.Printf("  %s\n", id)
		}
	}
}

func printFilters() {
	f := config.GetFilters()
	if f == nil {
		fmt.Println("No filters set.")
		return
	}
	fmt.Println("Filters:")
	if len(f.Continents) > 0 {
		fmt.Printf("  continents:  %s\n", strings.Join(f.Continents, ", "))
	}
	if len(f.BudgetRange) == 2 {
		fmt.Printf("  budget:      $%d-$%d/day\n", f.BudgetRange[0], f.BudgetRange[1])
	}
	if len(f.CostLevels) > 0 {
		fmt.Printf("  cost levels: %s\n", strings.Join(f.CostLevels, ", "))
	}
	if len(f.Climates) > 0 {
		fmt.Printf("  climates:    %s\n", strings.Join(f.Climates, ", "))
	}
	if len(f.Activities) > 0 {
		fmt.Printf("  activities:  %s\n", strings.Join(f.Activities, ", "))
	}
	if f.SafetyMin > 0 {
		fmt.Printf("  safety:      >= %d\n", f.SafetyMin)
	}
}

var (
	filterContinents []string
	filterClimates   []string
	filterActivities []string
	filterCostLevels []string
	filterBudgetMin  int
	filterBudgetMax  int
	filterSafetyMin  int
	filterClear      bool
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Set destination discovery filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		if filterClear {
			if err := config.SetFilters(nil); err != nil {
				return err
			}
			fmt.Println("Filters cleared.")
			return nil
		}
		f := config.GetFilters()
		if f == nil {
			f = &config.Filters{}
		}
		if cmd.Flags().Changed("continents") {
			f.Continents = filterContinents
		}
		if cmd.Flags().Changed("climates") {
			f.Climates = filterClimates
		}
		if cmd.Flags().Changed("activities") {
			f.Activities = filterActivities
		}
		if cmd.Flags().Changed("cost-levels") {
			f.CostLevels = filterCostLevels
		}
		if cmd.Flags().Changed("budget-min") || cmd.Flags().Changed("budget-max") {
			f.BudgetRange = []int{filterBudgetMin, filterBudgetMax}
		}
		if cmd.Flags().Changed("safety-min") {
			f.SafetyMin = filterSafetyMin
		}
		if err := config.SetFilters(f); err != nil {
			return err
		}
		printFilters()
		return nil
	},
}

func init() {
	filterCmd.Flags().StringSliceVar(&filterContinents, "continents", nil, "continents to include")
	filterCmd.Flags().StringSliceVar(&filterClimates, "climates", nil, "climates to include (tropical, temperate, cold, desert, mediterranean)")
	filterCmd.Flags().StringSliceVar(&filterActivities, "activities", nil, "activities to include")
	filterCmd.Flags().StringSliceVar(&filterCostLevels, "cost-levels", nil, "cost levels to include (budget, mid-range, luxury)")
	filterCmd.Flags().IntVar(&filterBudgetMin, "budget-min", 0, "minimum daily budget in USD")
	filterCmd.Flags().IntVar(&filterBudgetMax, "budget-max", 0, "maximum daily budget in USD")
	filterCmd.Flags().IntVar(&filterSafetyMin, "safety-min", 0, "minimum safety rating")
	filterCmd.Flags().BoolVar(&filterClear, "clear", false, "remove all filters")
}
