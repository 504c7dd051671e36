package fitfuel

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/app"
	"github.com/saadjs/fitfuel/internal/config"
	"github.com/saadjs/fitfuel/internal/logger"
)

var (
	dbPath      string
	configPath  string
	profileFlag string
	debug       bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fitfuel",
	Short: "fitfuel tracks food, workouts, and meal orders from your terminal",
	Long:  "fitfuel is a local-first nutrition and workout tracker with a restaurant cart, checkout, and an optional sync server.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logDir, err := app.DefaultLogDir()
		if err != nil {
			return err
		}
		if err := logger.Init(logger.Config{Debug: debug, Dir: logDir}); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Profile id or name (default active profile)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log to stderr at debug level")
}
