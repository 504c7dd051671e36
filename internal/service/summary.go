package service

import (
	"database/sql"
	"time"

	"github.com/saadjs/fitfuel/internal/ledger"
	"github.com/saadjs/fitfuel/internal/model"
)

// DayLog is the raw material for a day's totals.
type DayLog struct {
	Date     string                  `json:"date"`
	Food     []model.FoodLogEntry    `json:"food"`
	Workouts []model.WorkoutLogEntry `json:"workouts"`
	WaterMl  float64                 `json:"water"`
}

type RangeLog struct {
	From     string                  `json:"from"`
	To       string                  `json:"to"`
	Food     []model.FoodLogEntry    `json:"food"`
	Workouts []model.WorkoutLogEntry `json:"workouts"`
	Water    map[string]float64      `json:"water"`
}

type DaySummary struct {
	Date     string `json:"date"`
	HasGoals bool   `json:"hasGoals"`
	// WithinTarget reports net calories within 10% of the calorie goal.
	WithinTarget bool `json:"withinTarget"`
	ledger.Summary
}

func GetLogByDate(db *sql.DB, profileID, date string) (DayLog, error) {
	day, err := parseDay(date)
	if err != nil {
		return DayLog{}, err
	}
	d := day.Format(dateLayout)
	food, err := ListFoodLogs(db, FoodLogFilter{ProfileID: profileID, Date: d, Limit: -1})
	if err != nil {
		return DayLog{}, err
	}
	workouts, err := ListWorkoutLogs(db, WorkoutLogFilter{ProfileID: profileID, Date: d, Limit: -1})
	if err != nil {
		return DayLog{}, err
	}
	water, err := WaterForDay(db, profileID, d)
	if err != nil {
		return DayLog{}, err
	}
	return DayLog{Date: d, Food: food, Workouts: workouts, WaterMl: water}, nil
}

func GetLogsByRange(db *sql.DB, profileID, from, to string) (RangeLog, error) {
	if _, _, err := rangeBounds(from, to); err != nil {
		return RangeLog{}, err
	}
	food, err := ListFoodLogs(db, FoodLogFilter{ProfileID: profileID, FromDate: from, ToDate: to, Limit: -1})
	if err != nil {
		return RangeLog{}, err
	}
	workouts, err := ListWorkoutLogs(db, WorkoutLogFilter{ProfileID: profileID, FromDate: from, ToDate: to, Limit: -1})
	if err != nil {
		return RangeLog{}, err
	}
	water, err := WaterByRange(db, profileID, from, to)
	if err != nil {
		return RangeLog{}, err
	}
	return RangeLog{From: from, To: to, Food: food, Workouts: workouts, Water: water}, nil
}

// DailySummary derives the day's totals from raw logs on every call.
func DailySummary(db *sql.DB, profileID, date string) (DaySummary, error) {
	log, err := GetLogByDate(db, profileID, date)
	if err != nil {
		return DaySummary{}, err
	}
	goals, hasGoals, err := GetGoals(db, profileID)
	if err != nil {
		return DaySummary{}, err
	}
	if !hasGoals {
		goals = DefaultGoals
	}
	totals := ledger.ComputeTotals(log.Food, log.Workouts, log.WaterMl)
	summary := ledger.Summarize(totals, goals)
	return DaySummary{
		Date:         log.Date,
		HasGoals:     hasGoals,
		WithinTarget: AdherenceWithin(summary.NetCalories, goals.Calories, 0.10),
		Summary:      summary,
	}, nil
}

// History returns one view per day with entries between from and to.
func History(db *sql.DB, profileID, from, to string) ([]ledger.DayView, error) {
	r, err := GetLogsByRange(db, profileID, from, to)
	if err != nil {
		return nil, err
	}
	return ledger.GroupByDay(r.Food, r.Workouts, r.Water), nil
}

// WeekHistory returns the Monday-based week containing date.
func WeekHistory(db *sql.DB, profileID, date string) (ledger.WeekView, error) {
	day, err := parseDay(date)
	if err != nil {
		return ledger.WeekView{}, err
	}
	start := ledger.StartOfWeek(day)
	days, err := History(db, profileID, start.Format(dateLayout), start.AddDate(0, 0, 6).Format(dateLayout))
	if err != nil {
		return ledger.WeekView{}, err
	}
	return ledger.Week(days, start), nil
}

// DayOf formats t as the local calendar date.
func DayOf(t time.Time) string {
	return t.Local().Format(dateLayout)
}
