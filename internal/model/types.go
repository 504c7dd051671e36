package model

import (
	"fmt"
	"strings"
	"time"
)

type Meal string

const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
	MealSnack     Meal = "snack"
)

var Meals = []Meal{MealBreakfast, MealLunch, MealDinner, MealSnack}

func ParseMeal(value string) (Meal, error) {
	v := Meal(strings.ToLower(strings.TrimSpace(value)))
	if v == "snacks" {
		v = MealSnack
	}
	for _, m := range Meals {
		if v == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid meal %q (use breakfast, lunch, dinner, or snack)", value)
}

type ExerciseType string

const (
	ExerciseReps     ExerciseType = "reps"
	ExerciseDuration ExerciseType = "duration"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	WeightKg  *float64  `json:"weightKg,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Goals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Water    float64 `json:"water"`
}

type FoodLogEntry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fats     float64   `json:"fats"`
	Meal     Meal      `json:"meal"`
	FoodID   string    `json:"foodId,omitempty"`
	LoggedAt time.Time `json:"loggedAt"`
}

// WorkoutLogEntry carries Reps and Sets only for reps exercises and Duration
// (minutes) only for duration exercises.
type WorkoutLogEntry struct {
	ID             string       `json:"id"`
	ExerciseID     string       `json:"exerciseId"`
	Name           string       `json:"name"`
	Type           ExerciseType `json:"type"`
	Category       string       `json:"category"`
	Reps           *int         `json:"reps"`
	Sets           *int         `json:"sets"`
	Duration       *float64     `json:"duration"`
	CaloriesBurned float64      `json:"caloriesBurned"`
	Timestamp      time.Time    `json:"timestamp"`
}

type ExerciseDefinition struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Type           ExerciseType `json:"type"`
	Category       string       `json:"category"`
	CaloriesPerRep *float64     `json:"caloriesPerRep,omitempty"`
	MET            *float64     `json:"met,omitempty"`
}

type DailyTotals struct {
	Calories       float64 `json:"calories"`
	Protein        float64 `json:"protein"`
	Carbs          float64 `json:"carbs"`
	Fats           float64 `json:"fats"`
	CaloriesBurned float64 `json:"caloriesBurned"`
	Water          float64 `json:"water"`
}

type FoodItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Category    string    `json:"category"`
	ServingSize string    `json:"servingSize,omitempty"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fats        float64   `json:"fats"`
	Barcode     string    `json:"barcode,omitempty"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Restaurant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cuisine   string    `json:"cuisine,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type MenuItem struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurantId"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	Calories     float64 `json:"calories"`
	Category     string  `json:"category,omitempty"`
	Available    bool    `json:"available"`
}

type CartItem struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	RestaurantID   string  `json:"restaurantId"`
	RestaurantName string  `json:"restaurantName"`
}

type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

type Order struct {
	ID             string      `json:"id"`
	CartKey        string      `json:"-"`
	GatewayOrderID string      `json:"gatewayOrderId"`
	PaymentID      string      `json:"paymentId,omitempty"`
	Subtotal       float64     `json:"subtotal"`
	Total          float64     `json:"total"`
	AmountMinor    int64       `json:"amountMinor"`
	Currency       string      `json:"currency"`
	Status         OrderStatus `json:"status"`
	Items          []CartItem  `json:"items"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}
