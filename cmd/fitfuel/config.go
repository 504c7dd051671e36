package fitfuel

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
}

var (
	cfgCurrency      string
	cfgWaterStep     string
	cfgActiveProfile string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set stored settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			updates := 0
			if cmd.Flags().Changed("currency") {
				code := strings.ToUpper(strings.TrimSpace(cfgCurrency))
				if len(code) != 3 {
					return fmt.Errorf("currency must be a 3-letter code")
				}
				if err := service.SetConfig(sqldb, service.ConfigCurrency, code); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("water-step") {
				step, err := strconv.ParseFloat(strings.TrimSpace(cfgWaterStep), 64)
				if err != nil || step <= 0 {
					return fmt.Errorf("water step must be a positive number of ml")
				}
				if err := service.SetConfig(sqldb, service.ConfigWaterStepMl, cfgWaterStep); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("active-profile") {
				if _, err := service.SetActiveProfile(sqldb, cfgActiveProfile); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s)\n", updates)
			return nil
		})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective file/env config and stored settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "KEY\tVALUE")
		for _, kv := range cfg.Keys() {
			fmt.Fprintf(out, "%s\t%s\n", kv[0], kv[1])
		}
		return withDB(func(sqldb *sql.DB) error {
			stored, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stored))
			for k := range stored {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "stored.%s\t%s\n", k, stored[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configShowCmd)
	configSetCmd.Flags().StringVar(&cfgCurrency, "currency", "", "Checkout currency code, e.g. INR")
	configSetCmd.Flags().StringVar(&cfgWaterStep, "water-step", "", "Default ml for `water add`")
	configSetCmd.Flags().StringVar(&cfgActiveProfile, "active-profile", "", "Profile id or name")
}
