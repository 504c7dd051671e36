package service_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/saadjs/fitfuel/internal/ledger"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

func at(date string, hour int) time.Time {
	d, _ := time.ParseInLocation("2006-01-02", date, time.Local)
	return d.Add(time.Duration(hour) * time.Hour)
}

func TestFoodLogLifecycle(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	p := newTestProfile(t, sqldb, nil)

	oats, err := service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: p.ID, ID: "f1", Name: "Oats", Calories: 300, Protein: 10, Carbs: 50, Fats: 6, Meal: "breakfast", LoggedAt: at("2026-02-20", 8)})
	if err != nil {
		t.Fatalf("add oats: %v", err)
	}
	if oats.Meal != model.MealBreakfast {
		t.Fatalf("unexpected meal %q", oats.Meal)
	}
	if _, err := service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: p.ID, Name: "Chips", Calories: 200, Meal: "snacks", LoggedAt: at("2026-02-20", 15)}); err != nil {
		t.Fatalf("add chips: %v", err)
	}
	if _, err := service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: p.ID, Name: "Yesterday", Calories: 999, Meal: "dinner", LoggedAt: at("2026-02-19", 20)}); err != nil {
		t.Fatalf("add yesterday: %v", err)
	}

	_, err = service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: p.ID, Name: "Bad", Calories: -1, Meal: "lunch", LoggedAt: at("2026-02-20", 12)})
	var verr *ledger.ValidationError
	if !errors.As(err, &verr) || verr.Field != "calories" {
		t.Fatalf("expected calories ValidationError, got %v", err)
	}
	_, err = service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: p.ID, ID: "f1", Name: "Dup", Calories: 1, Meal: "lunch", LoggedAt: at("2026-02-20", 12)})
	if !errors.As(err, &verr) || verr.Field != "id" {
		t.Fatalf("expected duplicate id ValidationError, got %v", err)
	}
	if _, err := service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: p.ID, Name: "Soup", Meal: "brunch"}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected invalid meal to be rejected as input error, got %v", err)
	}

	day, err := service.ListFoodLogs(sqldb, service.FoodLogFilter{ProfileID: p.ID, Date: "2026-02-20"})
	if err != nil {
		t.Fatalf("list day: %v", err)
	}
	if len(day) != 2 || day[0].Name != "Oats" {
		t.Fatalf("unexpected day log: %+v", day)
	}
	snacks, err := service.ListFoodLogs(sqldb, service.FoodLogFilter{ProfileID: p.ID, Meal: "snack"})
	if err != nil || len(snacks) != 1 {
		t.Fatalf("expected one snack, got %+v, %v", snacks, err)
	}
	ranged, err := service.ListFoodLogs(sqldb, service.FoodLogFilter{ProfileID: p.ID, FromDate: "2026-02-19", ToDate: "2026-02-20"})
	if err != nil || len(ranged) != 3 {
		t.Fatalf("expected three entries in range, got %+v, %v", ranged, err)
	}

	for i := 0; i < 2; i++ {
		if err := service.RemoveFoodLog(sqldb, p.ID, "f1"); err != nil {
			t.Fatalf("remove #%d: %v", i, err)
		}
	}
	day, _ = service.ListFoodLogs(sqldb, service.FoodLogFilter{ProfileID: p.ID, Date: "2026-02-20"})
	if len(day) != 1 {
		t.Fatalf("expected one entry after removal, got %+v", day)
	}
}

func TestLogWorkoutUsesProfileWeightAndCatalog(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	p := newTestProfile(t, sqldb, floatPtr(75))

	run, err := service.LogWorkout(sqldb, service.LogWorkoutInput{ProfileID: p.ID, ExerciseID: "running", DurationMinutes: 30, At: at("2026-02-20", 7)})
	if err != nil {
		t.Fatalf("log run: %v", err)
	}
	if math.Abs(run.CaloriesBurned-367.5) > 1e-9 || run.Reps != nil || run.Duration == nil {
		t.Fatalf("unexpected run entry: %+v", run)
	}
	squats, err := service.LogWorkout(sqldb, service.LogWorkoutInput{ProfileID: p.ID, ExerciseID: "Squats", Reps: 10, Sets: 3, At: at("2026-02-20", 18)})
	if err != nil {
		t.Fatalf("log squats: %v", err)
	}
	if math.Abs(squats.CaloriesBurned-9.6) > 1e-9 || *squats.Sets != 3 || squats.Duration != nil {
		t.Fatalf("unexpected squats entry: %+v", squats)
	}

	logs, err := service.ListWorkoutLogs(sqldb, service.WorkoutLogFilter{ProfileID: p.ID, Date: "2026-02-20"})
	if err != nil || len(logs) != 2 {
		t.Fatalf("expected two workout logs, got %+v, %v", logs, err)
	}
	if _, err := service.LogWorkout(sqldb, service.LogWorkoutInput{ProfileID: p.ID, ExerciseID: "levitation", DurationMinutes: 5}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected unknown exercise to be ErrNotFound, got %v", err)
	}
	if err := service.DeleteWorkoutLog(sqldb, p.ID, run.ID); err != nil {
		t.Fatalf("delete run: %v", err)
	}
	if err := service.DeleteWorkoutLog(sqldb, p.ID, run.ID); err != nil {
		t.Fatalf("delete run twice: %v", err)
	}
}

func TestDailySummaryIsSignedAndClampedForDisplay(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	p := newTestProfile(t, sqldb, floatPtr(75))

	if err := service.SetGoals(sqldb, p.ID, model.Goals{Calories: 500, Protein: 50, Carbs: 100, Fats: 20, Water: 2000}); err != nil {
		t.Fatalf("set goals: %v", err)
	}
	if _, err := service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: p.ID, Name: "Pizza", Calories: 900, Protein: 30, Carbs: 120, Fats: 35, Meal: "dinner", LoggedAt: at("2026-02-20", 19)}); err != nil {
		t.Fatalf("add pizza: %v", err)
	}
	if _, err := service.LogWorkout(sqldb, service.LogWorkoutInput{ProfileID: p.ID, ExerciseID: "squats", Reps: 10, Sets: 3, At: at("2026-02-20", 7)}); err != nil {
		t.Fatalf("log squats: %v", err)
	}
	if err := service.SetWater(sqldb, p.ID, "2026-02-20", 1500); err != nil {
		t.Fatalf("set water: %v", err)
	}

	s, err := service.DailySummary(sqldb, p.ID, "2026-02-20")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !s.HasGoals || s.Totals.Calories != 900 || s.Totals.Water != 1500 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if math.Abs(s.NetCalories-890.4) > 1e-9 || math.Abs(s.Remaining-(-390.4)) > 1e-9 {
		t.Fatalf("expected signed net/remaining, got %v / %v", s.NetCalories, s.Remaining)
	}
	if s.DisplayRemaining != 0 || s.CarbsLeft != 0 || s.ProteinLeft != 20 || !s.OverTarget || s.WithinTarget {
		t.Fatalf("unexpected presentation values: %+v", s)
	}
}

func TestWeekHistoryFoldsRangeLogs(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	p := newTestProfile(t, sqldb, nil)

	// 2026-02-16 is a Monday.
	for _, e := range []struct {
		day  string
		kcal float64
	}{{"2026-02-16", 500}, {"2026-02-16", 300}, {"2026-02-18", 1200}, {"2026-02-23", 4000}} {
		if _, err := service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: p.ID, Name: "Meal", Calories: e.kcal, Meal: "lunch", LoggedAt: at(e.day, 12)}); err != nil {
			t.Fatalf("add food: %v", err)
		}
	}
	if err := service.SetWater(sqldb, p.ID, "2026-02-18", 700); err != nil {
		t.Fatalf("set water: %v", err)
	}

	week, err := service.WeekHistory(sqldb, p.ID, "2026-02-19")
	if err != nil {
		t.Fatalf("week history: %v", err)
	}
	if week.Start != "2026-02-16" || week.End != "2026-02-22" {
		t.Fatalf("unexpected week bounds: %s..%s", week.Start, week.End)
	}
	if week.DaysWithEntries != 2 || week.Totals.Calories != 2000 || week.Totals.Water != 700 {
		t.Fatalf("unexpected week totals: %+v", week)
	}
	if week.HighestDay == nil || week.HighestDay.Date != "2026-02-18" || week.LowestDay.Date != "2026-02-16" {
		t.Fatalf("unexpected extremes: %+v %+v", week.HighestDay, week.LowestDay)
	}

	r, err := service.GetLogsByRange(sqldb, p.ID, "2026-02-16", "2026-02-23")
	if err != nil || len(r.Food) != 4 {
		t.Fatalf("expected four entries in range, got %+v, %v", r, err)
	}
	if _, err := service.GetLogsByRange(sqldb, p.ID, "2026-02-23", "2026-02-16"); err == nil {
		t.Fatalf("expected inverted range to be rejected")
	}
}

func TestWorkoutIDOwnedByAnotherProfileConflicts(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	a := newTestProfile(t, sqldb, floatPtr(70))
	b, err := service.CreateProfile(sqldb, service.CreateProfileInput{Name: "other", WeightKg: floatPtr(80)})
	if err != nil {
		t.Fatalf("create second profile: %v", err)
	}

	if _, err := service.LogWorkout(sqldb, service.LogWorkoutInput{ProfileID: a.ID, ID: "w1", ExerciseID: "running", DurationMinutes: 20, At: at("2026-02-20", 7)}); err != nil {
		t.Fatalf("log for a: %v", err)
	}
	_, err = service.LogWorkout(sqldb, service.LogWorkoutInput{ProfileID: b.ID, ID: "w1", ExerciseID: "squats", Reps: 10, Sets: 2, At: at("2026-02-20", 8)})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected ErrConflict for foreign id, got %v", err)
	}

	bLogs, err := service.ListWorkoutLogs(sqldb, service.WorkoutLogFilter{ProfileID: b.ID})
	if err != nil || len(bLogs) != 0 {
		t.Fatalf("expected no logs for b, got %+v, %v", bLogs, err)
	}
	aLogs, err := service.ListWorkoutLogs(sqldb, service.WorkoutLogFilter{ProfileID: a.ID})
	if err != nil || len(aLogs) != 1 || aLogs[0].ExerciseID != "running" {
		t.Fatalf("a's entry must be untouched, got %+v, %v", aLogs, err)
	}

	// the owner may still replace its own entry
	updated, err := service.LogWorkout(sqldb, service.LogWorkoutInput{ProfileID: a.ID, ID: "w1", ExerciseID: "running", DurationMinutes: 40, At: at("2026-02-20", 7)})
	if err != nil {
		t.Fatalf("re-log for a: %v", err)
	}
	if updated.Duration == nil || *updated.Duration != 40 {
		t.Fatalf("unexpected updated entry: %+v", updated)
	}
	aLogs, _ = service.ListWorkoutLogs(sqldb, service.WorkoutLogFilter{ProfileID: a.ID})
	if len(aLogs) != 1 || aLogs[0].Duration == nil || *aLogs[0].Duration != 40 {
		t.Fatalf("expected one replaced entry, got %+v", aLogs)
	}
}

func TestFoodLogIDOwnedByAnotherProfileConflicts(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	a := newTestProfile(t, sqldb, nil)
	b, err := service.CreateProfile(sqldb, service.CreateProfileInput{Name: "other"})
	if err != nil {
		t.Fatalf("create second profile: %v", err)
	}
	if _, err := service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: a.ID, ID: "f1", Name: "Oats", Calories: 300, Meal: "breakfast", LoggedAt: at("2026-02-20", 8)}); err != nil {
		t.Fatalf("add for a: %v", err)
	}
	_, err = service.AddFoodLog(sqldb, service.AddFoodInput{ProfileID: b.ID, ID: "f1", Name: "Toast", Calories: 120, Meal: "breakfast", LoggedAt: at("2026-02-20", 9)})
	if !errors.Is(err, service.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
