package fitfuel

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Track water intake",
}

var waterDate string

var waterAddCmd = &cobra.Command{
	Use:   "add [ml]",
	Short: "Add water; without an amount adds the configured step (default 250ml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			} else {
				step, err := service.ConfigOr(sqldb, service.ConfigWaterStepMl, "250")
				if err != nil {
					return err
				}
				raw = step
			}
			ml, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("invalid water amount %q", raw)
			}
			date := dateOrToday(waterDate)
			total, err := service.AddWater(sqldb, p.ID, date, ml)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Water %s: %.0fml\n", date, total)
			return nil
		})
	},
}

var waterSetCmd = &cobra.Command{
	Use:   "set <ml>",
	Short: "Set the day's water total",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid water amount %q", args[0])
		}
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			date := dateOrToday(waterDate)
			if err := service.SetWater(sqldb, p.ID, date, ml); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Water %s: %.0fml\n", date, ml)
			return nil
		})
	},
}

var waterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the day's water total",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			date := dateOrToday(waterDate)
			ml, err := service.WaterForDay(sqldb, p.ID, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Water %s: %.0fml\n", date, ml)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(waterCmd)
	waterCmd.AddCommand(waterAddCmd, waterSetCmd, waterShowCmd)
	waterCmd.PersistentFlags().StringVar(&waterDate, "date", "", "Date YYYY-MM-DD (default today)")
}
