package fitfuel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/app"
	"github.com/saadjs/fitfuel/internal/backend"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
	"github.com/saadjs/fitfuel/internal/session"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Use a fitfuel server instead of the local database",
}

var (
	remotePassword string
	remoteProfile  string
	remoteDate     string
	remoteCurrency string
	remoteRefresh  bool
	remoteFoodName string
	remoteFoodKcal float64
	remoteFoodP    float64
	remoteFoodC    float64
	remoteFoodF    float64
	remoteFoodMeal string
	remoteWorkReps int
	remoteWorkSets int
	remoteWorkMins float64
)

// remoteClient builds a sync client whose token lives in the OS keyring under
// the server's base URL, plus the on-disk day cache for that server.
func remoteClient(cmd *cobra.Command) (*backend.Client, *backend.DayCache, error) {
	var days *backend.DayCache
	c, err := backend.New(backend.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  session.NewKeyring(cfg.API.BaseURL),
		OnSessionExpired: func() {
			if days != nil {
				days.Reset()
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Session expired; run `fitfuel remote login` again")
		},
	})
	if err != nil {
		return nil, nil, err
	}
	path, err := app.RemoteCachePath(cfg.API.BaseURL)
	if err != nil {
		return nil, nil, err
	}
	days = backend.OpenDayCache(c, path)
	return c, days, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func readPassword(cmd *cobra.Command) (string, error) {
	if remotePassword != "" {
		return remotePassword, nil
	}
	if env := os.Getenv("FITFUEL_PASSWORD"); env != "" {
		return env, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// remoteProfileID picks --profile-name from the user's profiles, or the first.
func remoteProfileID(ctx context.Context, c *backend.Client) (model.Profile, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return model.Profile{}, err
	}
	if len(me.Profiles) == 0 {
		return model.Profile{}, errors.New("account has no profiles")
	}
	if remoteProfile == "" {
		return me.Profiles[0], nil
	}
	for _, p := range me.Profiles {
		if p.ID == remoteProfile || strings.EqualFold(p.Name, remoteProfile) {
			return p, nil
		}
	}
	return model.Profile{}, fmt.Errorf("profile %q not found on server", remoteProfile)
}

var remoteRegisterCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account on the server and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		pw, err := readPassword(cmd)
		if err != nil {
			return err
		}
		u, err := c.Register(cmdContext(cmd), args[0], pw)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s\n", u.Email)
		return nil
	},
}

var remoteLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and store the session token in the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		pw, err := readPassword(cmd)
		if err != nil {
			return err
		}
		u, err := c.Login(cmdContext(cmd), args[0], pw)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", u.Email)
		return nil
	},
}

var remoteLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, days, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		if err := c.Logout(); err != nil {
			return err
		}
		days.Reset()
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var remoteWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and their profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		me, err := c.Me(cmdContext(cmd))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (admin: %t)\n", me.User.Email, me.User.IsAdmin)
		for _, p := range me.Profiles {
			fmt.Fprintf(out, "%s\t%s\n", p.ID, p.Name)
		}
		return nil
	},
}

var remoteTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the server's summary and entries for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, days, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		ctx := cmdContext(cmd)
		p, err := remoteProfileID(ctx, c)
		if err != nil {
			return err
		}
		date := dateOrToday(remoteDate)
		s, err := c.Summary(ctx, p.ID, date)
		if err != nil {
			return err
		}
		printDaySummary(cmd, p.Name, s)
		load := days.Load
		if remoteRefresh {
			load = days.Refresh
		}
		day, err := load(ctx, p.ID, date)
		if err != nil {
			return err
		}
		printRemoteDay(cmd, day.Food, day.Workouts)
		return nil
	},
}

func printRemoteDay(cmd *cobra.Command, food []model.FoodLogEntry, workouts []model.WorkoutLogEntry) {
	out := cmd.OutOrStdout()
	for _, f := range food {
		fmt.Fprintf(out, "food\t%s\t%s\t%s\t%.1f\n", f.ID, f.Meal, f.Name, f.Calories)
	}
	for _, w := range workouts {
		fmt.Fprintf(out, "workout\t%s\t%s\t%s\t%.1f\n", w.ID, w.Name, workoutDetail(w), w.CaloriesBurned)
	}
}

var remoteFoodCmd = &cobra.Command{
	Use:   "food",
	Short: "Log food on the server",
}

var remoteFoodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a food entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, days, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		ctx := cmdContext(cmd)
		p, err := remoteProfileID(ctx, c)
		if err != nil {
			return err
		}
		e, err := c.AddFood(ctx, p.ID, backend.FoodRequest{
			Name:     remoteFoodName,
			Calories: remoteFoodKcal,
			Protein:  remoteFoodP,
			Carbs:    remoteFoodC,
			Fats:     remoteFoodF,
			Meal:     remoteFoodMeal,
			LoggedAt: time.Now(),
		})
		if err != nil {
			return err
		}
		days.Invalidate(p.ID, service.DayOf(e.LoggedAt))
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%.1f kcal) as %s\n", e.Name, e.Calories, e.ID)
		return nil
	},
}

var remoteFoodRemoveCmd = &cobra.Command{
	Use:   "remove <entry-id>",
	Short: "Remove a food entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, days, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		ctx := cmdContext(cmd)
		p, err := remoteProfileID(ctx, c)
		if err != nil {
			return err
		}
		if err := c.RemoveFood(ctx, p.ID, args[0]); err != nil {
			return err
		}
		// the entry's day is unknown here
		days.Invalidate(p.ID, "")
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var remoteWorkoutCmd = &cobra.Command{
	Use:   "workout <exercise>",
	Short: "Log a workout on the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, days, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		ctx := cmdContext(cmd)
		p, err := remoteProfileID(ctx, c)
		if err != nil {
			return err
		}
		e, err := c.LogWorkout(ctx, p.ID, backend.WorkoutRequest{
			ExerciseID:      args[0],
			Reps:            remoteWorkReps,
			Sets:            remoteWorkSets,
			DurationMinutes: remoteWorkMins,
			At:              time.Now(),
		})
		if err != nil {
			return err
		}
		days.Invalidate(p.ID, service.DayOf(e.Timestamp))
		fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %.1f kcal (%s)\n", e.Name, e.CaloriesBurned, e.ID)
		return nil
	},
}

var remoteWaterCmd = &cobra.Command{
	Use:   "water <ml>",
	Short: "Add water on the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ml float64
		if _, err := fmt.Sscanf(args[0], "%g", &ml); err != nil || ml <= 0 {
			return fmt.Errorf("invalid ml %q", args[0])
		}
		c, days, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		ctx := cmdContext(cmd)
		p, err := remoteProfileID(ctx, c)
		if err != nil {
			return err
		}
		date := dateOrToday(remoteDate)
		total, err := c.AddWater(ctx, p.ID, date, ml)
		if err != nil {
			return err
		}
		days.Invalidate(p.ID, date)
		fmt.Fprintf(cmd.OutOrStdout(), "Water: %.0f ml\n", total)
		return nil
	},
}

var remoteCartCmd = &cobra.Command{
	Use:   "cart [menu-item-id]",
	Short: "Show the server cart, or add a menu item to it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		ctx := cmdContext(cmd)
		if len(args) == 1 {
			v, err := c.AddToCart(ctx, args[0])
			if err != nil {
				return err
			}
			printCart(cmd, v)
			return nil
		}
		v, err := c.Cart(ctx)
		if err != nil {
			return err
		}
		printCart(cmd, v)
		return nil
	},
}

var remoteCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Create a payment order for the server cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		res, err := c.Checkout(cmdContext(cmd), remoteCurrency)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Gateway order: %s\n", res.Order.GatewayOrderID)
		fmt.Fprintf(out, "Amount: %.2f %s\n", res.Order.Total, res.Order.Currency)
		fmt.Fprintf(out, "Key: %s\n", res.KeyID)
		return nil
	},
}

var remoteVerifyCmd = &cobra.Command{
	Use:   "verify <gateway-order-id> <payment-id> <signature>",
	Short: "Confirm a payment with the server",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := remoteClient(cmd)
		if err != nil {
			return err
		}
		o, err := c.VerifyPayment(cmdContext(cmd), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s is %s\n", o.ID, o.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteRegisterCmd, remoteLoginCmd, remoteLogoutCmd, remoteWhoamiCmd, remoteTodayCmd,
		remoteFoodCmd, remoteWorkoutCmd, remoteWaterCmd, remoteCartCmd, remoteCheckoutCmd, remoteVerifyCmd)
	remoteFoodCmd.AddCommand(remoteFoodAddCmd, remoteFoodRemoveCmd)

	remoteCmd.PersistentFlags().StringVar(&remoteProfile, "profile-name", "", "Server profile id or name (default first profile)")
	for _, c := range []*cobra.Command{remoteRegisterCmd, remoteLoginCmd} {
		c.Flags().StringVar(&remotePassword, "password", "", "Password (default $FITFUEL_PASSWORD or stdin)")
	}
	remoteTodayCmd.Flags().StringVar(&remoteDate, "date", "", "Date YYYY-MM-DD (default today)")
	remoteTodayCmd.Flags().BoolVar(&remoteRefresh, "refresh", false, "Refetch entries instead of using the local cache")
	remoteWaterCmd.Flags().StringVar(&remoteDate, "date", "", "Date YYYY-MM-DD (default today)")
	remoteCheckoutCmd.Flags().StringVar(&remoteCurrency, "currency", "", "Currency code (default server currency)")

	remoteFoodAddCmd.Flags().StringVar(&remoteFoodName, "name", "", "Food name")
	remoteFoodAddCmd.Flags().Float64Var(&remoteFoodKcal, "calories", 0, "Calories")
	remoteFoodAddCmd.Flags().Float64Var(&remoteFoodP, "protein", 0, "Protein grams")
	remoteFoodAddCmd.Flags().Float64Var(&remoteFoodC, "carbs", 0, "Carb grams")
	remoteFoodAddCmd.Flags().Float64Var(&remoteFoodF, "fats", 0, "Fat grams")
	remoteFoodAddCmd.Flags().StringVar(&remoteFoodMeal, "meal", "snack", "breakfast|lunch|dinner|snack")
	_ = remoteFoodAddCmd.MarkFlagRequired("name")

	remoteWorkoutCmd.Flags().IntVar(&remoteWorkReps, "reps", 0, "Reps per set")
	remoteWorkoutCmd.Flags().IntVar(&remoteWorkSets, "sets", 0, "Sets")
	remoteWorkoutCmd.Flags().Float64Var(&remoteWorkMins, "minutes", 0, "Duration in minutes")
}
