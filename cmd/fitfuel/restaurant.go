package fitfuel

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/service"
)

var restaurantCmd = &cobra.Command{
	Use:   "restaurant",
	Short: "Manage restaurants and their menus",
}

var (
	restaurantCuisine     string
	restaurantListCuisine string
)

var restaurantAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a restaurant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			r, err := service.CreateRestaurant(sqldb, args[0], restaurantCuisine)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added restaurant %s (%s)\n", r.Name, r.ID)
			return nil
		})
	},
}

var restaurantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List restaurants",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			rs, err := service.ListRestaurants(sqldb, restaurantListCuisine)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tCUISINE")
			for _, r := range rs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.Name, r.Cuisine)
			}
			return nil
		})
	},
}

var restaurantDeleteCmd = &cobra.Command{
	Use:   "delete <restaurant-id>",
	Short: "Delete a restaurant and its menu",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteRestaurant(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted restaurant %s\n", args[0])
			return nil
		})
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Manage menu items",
}

var (
	menuName        string
	menuDescription string
	menuPrice       float64
	menuCalories    float64
	menuCategory    string
	menuAvailable   bool
	menuListAll     bool
)

var menuAddCmd = &cobra.Command{
	Use:   "add <restaurant>",
	Short: "Add a menu item to a restaurant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			m, err := service.AddMenuItem(sqldb, service.MenuItemInput{
				RestaurantID: args[0],
				Name:         menuName,
				Description:  menuDescription,
				Price:        menuPrice,
				Calories:     menuCalories,
				Category:     menuCategory,
				Available:    menuAvailable,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added menu item %s at %.2f (%s)\n", m.Name, m.Price, m.ID)
			return nil
		})
	},
}

var menuListCmd = &cobra.Command{
	Use:   "list <restaurant>",
	Short: "List a restaurant's menu",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			r, err := service.GetRestaurant(sqldb, args[0])
			if err != nil {
				return err
			}
			items, err := service.ListMenu(sqldb, r.ID, menuListAll)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", r.Name)
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tPRICE\tKCAL\tCATEGORY\tAVAILABLE")
			for _, m := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.2f\t%.0f\t%s\t%t\n", m.ID, m.Name, m.Price, m.Calories, m.Category, m.Available)
			}
			return nil
		})
	},
}

var menuUpdateCmd = &cobra.Command{
	Use:   "update <item-id>",
	Short: "Update a menu item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			m, err := service.GetMenuItem(sqldb, args[0])
			if err != nil {
				return err
			}
			in := service.MenuItemInput{
				RestaurantID: m.RestaurantID, Name: m.Name, Description: m.Description,
				Price: m.Price, Calories: m.Calories, Category: m.Category, Available: m.Available,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = menuName
			}
			if flags.Changed("description") {
				in.Description = menuDescription
			}
			if flags.Changed("price") {
				in.Price = menuPrice
			}
			if flags.Changed("calories") {
				in.Calories = menuCalories
			}
			if flags.Changed("category") {
				in.Category = menuCategory
			}
			if flags.Changed("available") {
				in.Available = menuAvailable
			}
			updated, err := service.UpdateMenuItem(sqldb, m.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated menu item %s (%s)\n", updated.Name, updated.ID)
			return nil
		})
	},
}

var menuDeleteCmd = &cobra.Command{
	Use:   "delete <item-id>",
	Short: "Delete a menu item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteMenuItem(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted menu item %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(restaurantCmd)
	restaurantCmd.AddCommand(restaurantAddCmd, restaurantListCmd, restaurantDeleteCmd, menuCmd)
	menuCmd.AddCommand(menuAddCmd, menuListCmd, menuUpdateCmd, menuDeleteCmd)

	restaurantAddCmd.Flags().StringVar(&restaurantCuisine, "cuisine", "", "Cuisine")
	restaurantListCmd.Flags().StringVar(&restaurantListCuisine, "cuisine", "", "Filter by cuisine")

	for _, c := range []*cobra.Command{menuAddCmd, menuUpdateCmd} {
		c.Flags().StringVar(&menuName, "name", "", "Item name")
		c.Flags().StringVar(&menuDescription, "description", "", "Description")
		c.Flags().Float64Var(&menuPrice, "price", 0, "Price")
		c.Flags().Float64Var(&menuCalories, "calories", 0, "Calories")
		c.Flags().StringVar(&menuCategory, "category", "", "Category")
		c.Flags().BoolVar(&menuAvailable, "available", true, "Whether the item can be ordered")
	}
	_ = menuAddCmd.MarkFlagRequired("name")
	_ = menuAddCmd.MarkFlagRequired("price")
	menuListCmd.Flags().BoolVar(&menuListAll, "all", false, "Include unavailable items")
}
