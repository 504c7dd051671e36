package fitfuel

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/service"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize local fitfuel database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.ActiveProfile(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized fitfuel database at %s (active profile: %s)\n", path, p.Name)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
