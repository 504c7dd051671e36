package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/provider/openfoodfacts"
)

const sourceOpenFoodFacts = "openfoodfacts"

// FoodProvider is an external food database.
type FoodProvider interface {
	LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, error)
	SearchFoods(ctx context.Context, query string, limit int) ([]openfoodfacts.Product, error)
}

// ImportFoodByBarcode returns the catalog food for barcode, fetching and
// storing it from the provider when the catalog does not have it yet.
func ImportFoodByBarcode(ctx context.Context, db *sql.DB, p FoodProvider, barcode string) (model.FoodItem, bool, error) {
	existing, ok, err := FoodByBarcode(db, barcode)
	if err != nil {
		return model.FoodItem{}, false, err
	}
	if ok {
		return existing, false, nil
	}
	product, err := p.LookupBarcode(ctx, barcode)
	if err != nil {
		return model.FoodItem{}, false, providerError(fmt.Sprintf("lookup barcode %q", barcode), err)
	}
	if product.Code == "" {
		product.Code = barcode
	}
	item, err := CreateFood(db, foodInputFromProduct(product))
	if err != nil {
		return model.FoodItem{}, false, err
	}
	logger.Info("imported food", "barcode", barcode, "food_id", item.ID)
	return item, true, nil
}

// ImportFoodSearch stores up to limit provider results that are not already
// in the catalog and returns the stored foods.
func ImportFoodSearch(ctx context.Context, db *sql.DB, p FoodProvider, query string, limit int) ([]model.FoodItem, error) {
	products, err := p.SearchFoods(ctx, query, limit)
	if err != nil {
		return nil, providerError(fmt.Sprintf("search provider for %q", query), err)
	}
	out := make([]model.FoodItem, 0, len(products))
	for _, product := range products {
		if product.Code != "" {
			existing, ok, err := FoodByBarcode(db, product.Code)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, existing)
				continue
			}
		}
		item, err := CreateFood(db, foodInputFromProduct(product))
		if err != nil {
			logger.Warn("skipping provider food", "name", product.Name, "error", err)
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func foodInputFromProduct(p openfoodfacts.Product) FoodInput {
	return FoodInput{
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		ServingSize: p.ServingSize,
		Calories:    p.Calories,
		Protein:     p.Protein,
		Carbs:       p.Carbs,
		Fats:        p.Fats,
		Barcode:     p.Code,
		Source:      sourceOpenFoodFacts,
	}
}

// providerError keeps a provider miss recognizable and marks every other
// provider failure as ErrUpstream.
func providerError(op string, err error) error {
	if errors.Is(err, openfoodfacts.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
