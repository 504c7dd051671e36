package fitfuel

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/provider/openfoodfacts"
	"github.com/saadjs/fitfuel/internal/service"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the food and exercise catalogs",
}

var catalogFoodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage catalog foods",
}

var (
	catFoodName     string
	catFoodBrand    string
	catFoodCategory string
	catFoodServing  string
	catFoodCalories float64
	catFoodProtein  float64
	catFoodCarbs    float64
	catFoodFats     float64
	catFoodBarcode  string

	catSearchCategory string
	catSearchLimit    int
	catImportLimit    int
)

var catalogFoodSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search catalog foods by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		return withDB(func(sqldb *sql.DB) error {
			foods, err := service.SearchFoods(sqldb, service.FoodFilter{Query: query, Category: catSearchCategory, Limit: catSearchLimit})
			if err != nil {
				return err
			}
			printFoods(cmd, foods)
			return nil
		})
	},
}

var catalogFoodCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog food categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			cats, err := service.FoodCategories(sqldb)
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		})
	},
}

var catalogFoodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a food to the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			f, err := service.CreateFood(sqldb, service.FoodInput{
				Name:        catFoodName,
				Brand:       catFoodBrand,
				Category:    catFoodCategory,
				ServingSize: catFoodServing,
				Calories:    catFoodCalories,
				Protein:     catFoodProtein,
				Carbs:       catFoodCarbs,
				Fats:        catFoodFats,
				Barcode:     catFoodBarcode,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added food %s (%s)\n", f.Name, f.ID)
			return nil
		})
	},
}

var catalogFoodUpdateCmd = &cobra.Command{
	Use:   "update <food-id>",
	Short: "Update fields of a catalog food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			f, err := service.GetFood(sqldb, args[0])
			if err != nil {
				return err
			}
			in := service.FoodInput{
				Name: f.Name, Brand: f.Brand, Category: f.Category, ServingSize: f.ServingSize,
				Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fats: f.Fats,
				Barcode: f.Barcode, Source: f.Source,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = catFoodName
			}
			if flags.Changed("brand") {
				in.Brand = catFoodBrand
			}
			if flags.Changed("category") {
				in.Category = catFoodCategory
			}
			if flags.Changed("serving") {
				in.ServingSize = catFoodServing
			}
			if flags.Changed("calories") {
				in.Calories = catFoodCalories
			}
			if flags.Changed("protein") {
				in.Protein = catFoodProtein
			}
			if flags.Changed("carbs") {
				in.Carbs = catFoodCarbs
			}
			if flags.Changed("fats") {
				in.Fats = catFoodFats
			}
			if flags.Changed("barcode") {
				in.Barcode = catFoodBarcode
			}
			updated, err := service.UpdateFood(sqldb, f.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated food %s (%s)\n", updated.Name, updated.ID)
			return nil
		})
	},
}

var catalogFoodDeleteCmd = &cobra.Command{
	Use:   "delete <food-id>",
	Short: "Delete a catalog food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteFood(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted food %s\n", args[0])
			return nil
		})
	},
}

var catalogFoodImportCmd = &cobra.Command{
	Use:   "import <barcode|query>",
	Short: "Import foods from Open Food Facts by barcode or search query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := &openfoodfacts.Client{BaseURL: cfg.OpenFoodFacts.BaseURL}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return withDB(func(sqldb *sql.DB) error {
			if isBarcode(args[0]) {
				f, created, err := service.ImportFoodByBarcode(ctx, sqldb, provider, args[0])
				if err != nil {
					return err
				}
				verb := "Already in catalog"
				if created {
					verb = "Imported"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", verb, f.Name, f.ID)
				return nil
			}
			foods, err := service.ImportFoodSearch(ctx, sqldb, provider, args[0], catImportLimit)
			if err != nil {
				return err
			}
			printFoods(cmd, foods)
			return nil
		})
	},
}

func isBarcode(s string) bool {
	if len(s) < 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func printFoods(cmd *cobra.Command, foods []model.FoodItem) {
	fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tBRAND\tCATEGORY\tSERVING\tKCAL\tP\tC\tF")
	for _, f := range foods {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n", f.ID, f.Name, f.Brand, f.Category, f.ServingSize, f.Calories, f.Protein, f.Carbs, f.Fats)
	}
}

var catalogExerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage catalog exercises",
}

var (
	catExID       string
	catExName     string
	catExType     string
	catExCategory string
	catExPerRep   float64
	catExMET      float64

	catExListType     string
	catExListCategory string
)

var catalogExerciseListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List catalog exercises",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		return withDB(func(sqldb *sql.DB) error {
			exs, err := service.ListExercises(sqldb, service.ExerciseFilter{Query: query, Type: catExListType, Category: catExListCategory})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tTYPE\tCATEGORY\tRATE")
			for _, ex := range exs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", ex.ID, ex.Name, ex.Type, ex.Category, exerciseRate(ex))
			}
			return nil
		})
	},
}

func exerciseRate(ex model.ExerciseDefinition) string {
	switch {
	case ex.CaloriesPerRep != nil:
		return fmt.Sprintf("%g kcal/rep", *ex.CaloriesPerRep)
	case ex.MET != nil:
		return fmt.Sprintf("MET %g", *ex.MET)
	default:
		return "-"
	}
}

var catalogExerciseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an exercise to the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			ex, err := service.CreateExercise(sqldb, service.ExerciseInput{
				ID:             catExID,
				Name:           catExName,
				Type:           catExType,
				Category:       catExCategory,
				CaloriesPerRep: optionalFloat(cmd.Flags().Changed("per-rep"), catExPerRep),
				MET:            optionalFloat(cmd.Flags().Changed("met"), catExMET),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exercise %s (%s)\n", ex.Name, ex.ID)
			return nil
		})
	},
}

var catalogExerciseUpdateCmd = &cobra.Command{
	Use:   "update <exercise>",
	Short: "Update fields of a catalog exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			ex, err := service.GetExercise(sqldb, args[0])
			if err != nil {
				return err
			}
			in := service.ExerciseInput{
				Name: ex.Name, Type: string(ex.Type), Category: ex.Category,
				CaloriesPerRep: ex.CaloriesPerRep, MET: ex.MET,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = catExName
			}
			if flags.Changed("type") {
				in.Type = catExType
				in.CaloriesPerRep, in.MET = nil, nil
			}
			if flags.Changed("category") {
				in.Category = catExCategory
			}
			if flags.Changed("per-rep") {
				in.CaloriesPerRep = &catExPerRep
			}
			if flags.Changed("met") {
				in.MET = &catExMET
			}
			updated, err := service.UpdateExercise(sqldb, ex.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated exercise %s (%s)\n", updated.Name, updated.ID)
			return nil
		})
	},
}

var catalogExerciseDeleteCmd = &cobra.Command{
	Use:   "delete <exercise-id>",
	Short: "Delete a catalog exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteExercise(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted exercise %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogFoodCmd, catalogExerciseCmd)
	catalogFoodCmd.AddCommand(catalogFoodSearchCmd, catalogFoodCategoriesCmd, catalogFoodAddCmd, catalogFoodUpdateCmd, catalogFoodDeleteCmd, catalogFoodImportCmd)
	catalogExerciseCmd.AddCommand(catalogExerciseListCmd, catalogExerciseAddCmd, catalogExerciseUpdateCmd, catalogExerciseDeleteCmd)

	catalogFoodSearchCmd.Flags().StringVar(&catSearchCategory, "category", "", "Filter by category")
	catalogFoodSearchCmd.Flags().IntVar(&catSearchLimit, "limit", 50, "Max results")
	catalogFoodImportCmd.Flags().IntVar(&catImportLimit, "limit", 10, "Max search results to import")

	for _, c := range []*cobra.Command{catalogFoodAddCmd, catalogFoodUpdateCmd} {
		c.Flags().StringVar(&catFoodName, "name", "", "Food name")
		c.Flags().StringVar(&catFoodBrand, "brand", "", "Brand")
		c.Flags().StringVar(&catFoodCategory, "category", "", "Category")
		c.Flags().StringVar(&catFoodServing, "serving", "", "Serving size, e.g. \"100 g\"")
		c.Flags().Float64Var(&catFoodCalories, "calories", 0, "Calories per serving")
		c.Flags().Float64Var(&catFoodProtein, "protein", 0, "Protein grams")
		c.Flags().Float64Var(&catFoodCarbs, "carbs", 0, "Carb grams")
		c.Flags().Float64Var(&catFoodFats, "fats", 0, "Fat grams")
		c.Flags().StringVar(&catFoodBarcode, "barcode", "", "Barcode")
	}
	_ = catalogFoodAddCmd.MarkFlagRequired("name")
	_ = catalogFoodAddCmd.MarkFlagRequired("calories")

	catalogExerciseListCmd.Flags().StringVar(&catExListType, "type", "", "Filter by type (reps|duration)")
	catalogExerciseListCmd.Flags().StringVar(&catExListCategory, "category", "", "Filter by category")
	catalogExerciseAddCmd.Flags().StringVar(&catExID, "id", "", "Exercise id (default derived from name)")
	for _, c := range []*cobra.Command{catalogExerciseAddCmd, catalogExerciseUpdateCmd} {
		c.Flags().StringVar(&catExName, "name", "", "Exercise name")
		c.Flags().StringVar(&catExType, "type", "", "reps or duration")
		c.Flags().StringVar(&catExCategory, "category", "", "Category")
		c.Flags().Float64Var(&catExPerRep, "per-rep", 0, "Calories per rep (reps exercises)")
		c.Flags().Float64Var(&catExMET, "met", 0, "MET value (duration exercises)")
	}
	_ = catalogExerciseAddCmd.MarkFlagRequired("name")
	_ = catalogExerciseAddCmd.MarkFlagRequired("type")
}
