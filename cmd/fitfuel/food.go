package fitfuel

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/ledger"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Log food",
}

var (
	foodID       string
	foodName     string
	foodCalories string
	foodProtein  string
	foodCarbs    string
	foodFats     string
	foodMeal     string
	foodDate     string
	foodTime     string
	foodServings float64
	foodLimit    int

	foodListDate string
	foodListMeal string
)

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(foodDate, foodTime)
		if err != nil {
			return err
		}
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			e, err := service.AddFoodLog(sqldb, service.AddFoodInput{
				ProfileID: p.ID,
				ID:        foodID,
				Name:      foodName,
				Calories:  ledger.LenientNumber(foodCalories),
				Protein:   ledger.LenientNumber(foodProtein),
				Carbs:     ledger.LenientNumber(foodCarbs),
				Fats:      ledger.LenientNumber(foodFats),
				Meal:      foodMeal,
				LoggedAt:  at,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%.0f kcal, %s) as %s\n", e.Name, e.Calories, e.Meal, e.ID)
			return nil
		})
	},
}

var foodLogCatalogCmd = &cobra.Command{
	Use:   "log <food-id>",
	Short: "Log servings of a catalog food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(foodDate, foodTime)
		if err != nil {
			return err
		}
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			e, err := service.LogCatalogFood(sqldb, p.ID, args[0], foodServings, foodMeal, at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%.0f kcal, %s) as %s\n", e.Name, e.Calories, e.Meal, e.ID)
			return nil
		})
	},
}

var foodRemoveCmd = &cobra.Command{
	Use:   "remove <entry-id>",
	Short: "Remove a food entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			if err := service.RemoveFoodLog(sqldb, p.ID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed food entry %s\n", args[0])
			return nil
		})
	},
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food entries for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			entries, err := service.ListFoodLogs(sqldb, service.FoodLogFilter{
				ProfileID: p.ID,
				Date:      dateOrToday(foodListDate),
				Meal:      foodListMeal,
				Limit:     foodLimit,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tTIME\tMEAL\tNAME\tKCAL\tP\tC\tF")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n",
					e.ID, e.LoggedAt.Local().Format("15:04"), e.Meal, e.Name, e.Calories, e.Protein, e.Carbs, e.Fats)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodAddCmd, foodLogCatalogCmd, foodRemoveCmd, foodListCmd)

	foodAddCmd.Flags().StringVar(&foodID, "id", "", "Entry id (default generated)")
	foodAddCmd.Flags().StringVar(&foodName, "name", "", "Food name")
	// Nutrient values that do not parse are logged as 0.
	foodAddCmd.Flags().StringVar(&foodCalories, "calories", "", "Calories")
	foodAddCmd.Flags().StringVar(&foodProtein, "protein", "", "Protein grams")
	foodAddCmd.Flags().StringVar(&foodCarbs, "carbs", "", "Carbs grams")
	foodAddCmd.Flags().StringVar(&foodFats, "fats", "", "Fats grams")
	_ = foodAddCmd.MarkFlagRequired("name")
	_ = foodAddCmd.MarkFlagRequired("calories")

	for _, c := range []*cobra.Command{foodAddCmd, foodLogCatalogCmd} {
		c.Flags().StringVar(&foodMeal, "meal", "snack", "Meal: breakfast, lunch, dinner, snack")
		c.Flags().StringVar(&foodDate, "date", "", "Date YYYY-MM-DD (default now)")
		c.Flags().StringVar(&foodTime, "time", "", "Time HH:MM")
	}
	foodLogCatalogCmd.Flags().Float64Var(&foodServings, "servings", 1, "Servings")

	foodListCmd.Flags().StringVar(&foodListDate, "date", "", "Date YYYY-MM-DD (default today)")
	foodListCmd.Flags().StringVar(&foodListMeal, "meal", "", "Filter by meal")
	foodListCmd.Flags().IntVar(&foodLimit, "limit", 0, "Max rows")
}
