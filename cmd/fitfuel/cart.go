package fitfuel

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/service"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Build an order from restaurant menus",
}

// withCart opens the configured cart storage for the local cart.
func withCart(cmd *cobra.Command, run func(ctx context.Context, sqldb *sql.DB, store cart.Store, key string) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return withDB(func(sqldb *sql.DB) error {
		store, closeStore, err := cartStore(ctx, sqldb)
		if err != nil {
			return err
		}
		defer closeStore()
		return run(ctx, sqldb, store, service.CartKey(""))
	})
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cart lines and totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, _ *sql.DB, store cart.Store, key string) error {
			v, err := service.ViewCart(ctx, store, key)
			if err != nil {
				return err
			}
			printCart(cmd, v)
			return nil
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <menu-item-id>",
	Short: "Add one of a menu item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, sqldb *sql.DB, store cart.Store, key string) error {
			v, err := service.AddMenuItemToCart(ctx, sqldb, store, key, args[0])
			if err != nil {
				return err
			}
			printCart(cmd, v)
			return nil
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a line regardless of quantity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, _ *sql.DB, store cart.Store, key string) error {
			v, err := service.RemoveFromCart(ctx, store, key, args[0])
			if err != nil {
				return err
			}
			printCart(cmd, v)
			return nil
		})
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:     "update <item-id> <delta>",
	Short:   "Change a line's quantity; a change that would reach zero is ignored",
	Example: "  fitfuel cart update -- <item-id> -1",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := parseDelta(args[1])
		if err != nil {
			return err
		}
		return withCart(cmd, func(ctx context.Context, _ *sql.DB, store cart.Store, key string) error {
			v, err := service.UpdateCartQuantity(ctx, store, key, args[0], delta)
			if err != nil {
				return err
			}
			printCart(cmd, v)
			return nil
		})
	},
}

var cartStepCmd = &cobra.Command{
	Use:   "step <item-id> <delta>",
	Short: "Change a line's quantity, removing it at zero",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := parseDelta(args[1])
		if err != nil {
			return err
		}
		return withCart(cmd, func(ctx context.Context, _ *sql.DB, store cart.Store, key string) error {
			v, err := service.StepCartItem(ctx, store, key, args[0], delta)
			if err != nil {
				return err
			}
			printCart(cmd, v)
			return nil
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, _ *sql.DB, store cart.Store, key string) error {
			v, err := service.ClearCart(ctx, store, key)
			if err != nil {
				return err
			}
			printCart(cmd, v)
			return nil
		})
	},
}

func parseDelta(raw string) (int, error) {
	d, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid delta %q", raw)
	}
	return d, nil
}

func printCart(cmd *cobra.Command, v service.CartView) {
	out := cmd.OutOrStdout()
	if len(v.Items) == 0 {
		fmt.Fprintln(out, "Cart is empty")
		return
	}
	fmt.Fprintln(out, "ID\tITEM\tRESTAURANT\tQTY\tPRICE\tLINE")
	for _, it := range v.Items {
		fmt.Fprintf(out, "%s\t%s\t%s\t%d\t%.2f\t%.2f\n", it.ID, it.Name, it.RestaurantName, it.Quantity, it.Price, it.Price*float64(it.Quantity))
	}
	fmt.Fprintf(out, "Subtotal: %.2f\n", v.Breakdown.Subtotal)
	fmt.Fprintf(out, "Tax: %.2f\n", v.Breakdown.Tax)
	fmt.Fprintf(out, "Total: %.2f\n", v.Breakdown.Total)
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartUpdateCmd, cartStepCmd, cartClearCmd)
}
