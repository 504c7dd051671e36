package fitfuel

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(ctx, sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Negative food rows: %d\n", report.NegativeFoodRows)
			fmt.Fprintf(out, "Workout field errors: %d\n", report.WorkoutFieldErrors)
			fmt.Fprintf(out, "Orphan session logs: %d\n", report.OrphanSessionLogs)
			fmt.Fprintf(out, "Missing session logs: %d\n", report.MissingSessionLogs)
			fmt.Fprintf(out, "Corrupt carts: %d\n", len(report.CorruptCarts))
			fmt.Fprintf(out, "Stale unpaid orders: %d\n", report.StaleOrders)
			if doctorFix {
				fmt.Fprintf(out, "Fixed: %d\n", report.Fixed)
				// Re-check after fixes so exit status reflects final state.
				report, err = service.RunDoctor(ctx, sqldb, false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Delete orphan session logs and reset corrupt carts")
}
