package fitfuel

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/ledger"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review past days and weeks",
}

var (
	historyWeekDate string
	historyFrom     string
	historyTo       string
)

var historyWeekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the Monday-based week containing a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			w, err := service.WeekHistory(sqldb, p.ID, dateOrToday(historyWeekDate))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Week %s to %s\n", w.Start, w.End)
			printDayViews(cmd, w.Days)
			fmt.Fprintf(out, "Days logged: %d\n", w.DaysWithEntries)
			fmt.Fprintf(out, "Average: %.1f kcal eaten | %.1f kcal burned | %.1f kcal net\n", w.AverageCalories, w.AverageBurned, w.AverageNetCalories)
			if w.HighestDay != nil {
				fmt.Fprintf(out, "Highest: %s (%.1f kcal)\n", w.HighestDay.Date, w.HighestDay.Totals.Calories)
			}
			if w.LowestDay != nil {
				fmt.Fprintf(out, "Lowest: %s (%.1f kcal)\n", w.LowestDay.Date, w.LowestDay.Totals.Calories)
			}
			return nil
		})
	},
}

var historyRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Show one line per logged day in a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		to := dateOrToday(historyTo)
		from := historyFrom
		if from == "" {
			end, err := time.ParseInLocation("2006-01-02", to, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --to %q (expected YYYY-MM-DD)", to)
			}
			from = end.AddDate(0, 0, -29).Format("2006-01-02")
		}
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			days, err := service.History(sqldb, p.ID, from, to)
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No entries between %s and %s\n", from, to)
				return nil
			}
			printDayViews(cmd, days)
			return nil
		})
	},
}

func printDayViews(cmd *cobra.Command, days []ledger.DayView) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "DATE\tEATEN\tBURNED\tNET\tWATER\tFOOD\tWORKOUTS")
	for _, d := range days {
		fmt.Fprintf(out, "%s\t%.1f\t%.1f\t%.1f\t%.0f\t%d\t%d\n", d.Date, d.Totals.Calories, d.Totals.CaloriesBurned, d.NetCalories, d.Totals.Water, d.FoodCount, d.WorkoutCount)
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyWeekCmd, historyRangeCmd)
	historyWeekCmd.Flags().StringVar(&historyWeekDate, "date", "", "Any date in the week (default today)")
	historyRangeCmd.Flags().StringVar(&historyFrom, "from", "", "Start date YYYY-MM-DD (default 30 days before --to)")
	historyRangeCmd.Flags().StringVar(&historyTo, "to", "", "End date YYYY-MM-DD (default today)")
}
