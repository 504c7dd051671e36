package fitfuel

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage daily calorie, macro, and water goals",
}

var goalIn model.Goals

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the selected profile's goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			if err := service.SetGoals(sqldb, p.ID, goalIn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set goals for %s\n", p.Name)
			return nil
		})
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			g, ok, err := service.GetGoals(sqldb, p.ID)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals configured (using defaults)")
				g = service.DefaultGoals
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Calories: %.0f\nProtein: %.1fg\nCarbs: %.1fg\nFats: %.1fg\nWater: %.0fml\n", g.Calories, g.Protein, g.Carbs, g.Fats, g.Water)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd, goalShowCmd)

	goalSetCmd.Flags().Float64Var(&goalIn.Calories, "calories", 0, "Daily calorie target")
	goalSetCmd.Flags().Float64Var(&goalIn.Protein, "protein", 0, "Daily protein target grams")
	goalSetCmd.Flags().Float64Var(&goalIn.Carbs, "carbs", 0, "Daily carbs target grams")
	goalSetCmd.Flags().Float64Var(&goalIn.Fats, "fats", 0, "Daily fats target grams")
	goalSetCmd.Flags().Float64Var(&goalIn.Water, "water", 0, "Daily water target ml")
	_ = goalSetCmd.MarkFlagRequired("calories")
	_ = goalSetCmd.MarkFlagRequired("protein")
	_ = goalSetCmd.MarkFlagRequired("carbs")
	_ = goalSetCmd.MarkFlagRequired("fats")
	_ = goalSetCmd.MarkFlagRequired("water")
}
