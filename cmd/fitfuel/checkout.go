package fitfuel

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/service"
)

var checkoutCurrency string

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Create a payment order for the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := paymentGateway()
		if err != nil {
			return err
		}
		return withCart(cmd, func(ctx context.Context, sqldb *sql.DB, store cart.Store, key string) error {
			cur, err := currency(sqldb, checkoutCurrency)
			if err != nil {
				return err
			}
			o, err := service.Checkout(ctx, sqldb, store, gw, key, cur)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order: %s\n", o.ID)
			fmt.Fprintf(out, "Gateway order: %s\n", o.GatewayOrderID)
			fmt.Fprintf(out, "Amount: %.2f %s (%d minor units)\n", o.Total, o.Currency, o.AmountMinor)
			fmt.Fprintf(out, "Key: %s\n", gw.KeyID())
			fmt.Fprintln(out, "Complete payment, then run: fitfuel checkout verify <gateway-order> <payment-id> <signature>")
			return nil
		})
	},
}

var checkoutVerifyCmd = &cobra.Command{
	Use:   "verify <gateway-order-id> <payment-id> <signature>",
	Short: "Confirm a payment; the cart is cleared only when the signature checks out",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := paymentGateway()
		if err != nil {
			return err
		}
		return withCart(cmd, func(ctx context.Context, sqldb *sql.DB, store cart.Store, _ string) error {
			o, err := service.ConfirmPayment(ctx, sqldb, store, gw, service.ConfirmPaymentInput{
				GatewayOrderID: args[0],
				PaymentID:      args[1],
				Signature:      args[2],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is %s\n", o.ID, o.Status)
			return nil
		})
	},
}

var ordersLimit int

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders for the local cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			orders, err := service.ListOrders(sqldb, service.CartKey(""), ordersLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tCREATED\tSTATUS\tITEMS\tTOTAL\tCURRENCY")
			for _, o := range orders {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%.2f\t%s\n", o.ID, o.CreatedAt.Local().Format("2006-01-02 15:04"), o.Status, len(o.Items), o.Total, o.Currency)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd, ordersCmd)
	checkoutCmd.AddCommand(checkoutVerifyCmd)
	checkoutCmd.Flags().StringVar(&checkoutCurrency, "currency", "", "Currency code (default from config)")
	ordersCmd.Flags().IntVar(&ordersLimit, "limit", 20, "Max orders")
}
