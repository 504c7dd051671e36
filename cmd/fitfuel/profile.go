package fitfuel

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
}

var (
	profileWeight      float64
	profileName        string
	profileClearWeight bool
)

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.CreateProfile(sqldb, service.CreateProfileInput{
				Name:     args[0],
				WeightKg: optionalFloat(cmd.Flags().Changed("weight"), profileWeight),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s (%s)\n", p.Name, p.ID)
			return nil
		})
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			active, err := service.ActiveProfile(sqldb)
			if err != nil {
				return err
			}
			profiles, err := service.ListProfiles(sqldb, service.LocalUserID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ACTIVE\tID\tNAME\tWEIGHT")
			for _, p := range profiles {
				marker := ""
				if p.ID == active.ID {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", marker, p.ID, p.Name, weightLabel(p))
			}
			return nil
		})
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <id|name>",
	Short: "Set the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.SetActiveProfile(sqldb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active profile: %s\n", p.Name)
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the selected profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\nName: %s\nWeight: %s\n", p.ID, p.Name, weightLabel(p))
			return nil
		})
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rename the selected profile or record its body weight",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("weight") && !profileClearWeight {
			return fmt.Errorf("set at least one of --name, --weight, --clear-weight")
		}
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			updated, err := service.UpdateProfile(sqldb, service.UpdateProfileInput{
				ID:          p.ID,
				Name:        profileName,
				WeightKg:    optionalFloat(cmd.Flags().Changed("weight"), profileWeight),
				ClearWeight: profileClearWeight,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile %s (weight %s)\n", updated.Name, weightLabel(updated))
			return nil
		})
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a profile and all of its logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.ResolveProfile(sqldb, service.LocalUserID, args[0])
			if err != nil {
				return err
			}
			if err := service.DeleteProfile(sqldb, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", p.Name)
			return nil
		})
	},
}

func weightLabel(p model.Profile) string {
	if p.WeightKg == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f kg", *p.WeightKg)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileAddCmd, profileListCmd, profileUseCmd, profileShowCmd, profileUpdateCmd, profileDeleteCmd)

	profileAddCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Body weight in kg")
	profileUpdateCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Body weight in kg")
	profileUpdateCmd.Flags().StringVar(&profileName, "name", "", "New profile name")
	profileUpdateCmd.Flags().BoolVar(&profileClearWeight, "clear-weight", false, "Forget the recorded body weight")
}
