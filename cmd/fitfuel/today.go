package fitfuel

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

var (
	todayDate string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's intake, exercise, water, and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			s, err := service.DailySummary(sqldb, p.ID, dateOrToday(todayDate))
			if err != nil {
				return err
			}
			if todayJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			printDaySummary(cmd, p.Name, s)
			return nil
		})
	},
}

func printDaySummary(cmd *cobra.Command, profile string, s service.DaySummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Date: %s (%s)\n", s.Date, profile)
	fmt.Fprintf(out, "Eaten: %.1f kcal\n", s.Totals.Calories)
	fmt.Fprintf(out, "Burned: %.1f kcal\n", s.Totals.CaloriesBurned)
	fmt.Fprintf(out, "Net: %.1f kcal\n", s.NetCalories)
	fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", s.Totals.Protein, s.Totals.Carbs, s.Totals.Fats)
	fmt.Fprintf(out, "Water: %.0f / %.0f ml\n", s.Totals.Water, s.Goals.Water)
	goalLabel := "Goal"
	if !s.HasGoals {
		goalLabel = "Goal (default)"
	}
	fmt.Fprintf(out, "%s: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n", goalLabel, s.Goals.Calories, s.Goals.Protein, s.Goals.Carbs, s.Goals.Fats)
	if s.OverTarget {
		fmt.Fprintf(out, "Over target by %.1f kcal\n", -s.Remaining)
	} else {
		fmt.Fprintf(out, "Remaining: %.1f kcal | P %.1fg | C %.1fg | F %.1fg\n", s.DisplayRemaining, s.ProteinLeft, s.CarbsLeft, s.FatsLeft)
	}
	if s.WithinTarget {
		fmt.Fprintln(out, "On target")
	}
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Print the summary as JSON")
}
