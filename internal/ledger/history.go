package ledger

import (
	"sort"
	"time"

	"github.com/saadjs/fitfuel/internal/model"
)

const dayLayout = "2006-01-02"

type DayView struct {
	Date         string            `json:"date"`
	Totals       model.DailyTotals `json:"totals"`
	NetCalories  float64           `json:"netCalories"`
	FoodCount    int               `json:"foodCount"`
	WorkoutCount int               `json:"workoutCount"`
}

type WeekView struct {
	Start              string            `json:"start"`
	End                string            `json:"end"`
	Days               []DayView         `json:"days"`
	Totals             model.DailyTotals `json:"totals"`
	DaysWithEntries    int               `json:"daysWithEntries"`
	AverageCalories    float64           `json:"avgCalories"`
	AverageBurned      float64           `json:"avgCaloriesBurned"`
	AverageNetCalories float64           `json:"avgNetCalories"`
	HighestDay         *DayView          `json:"highestDay,omitempty"`
	LowestDay          *DayView          `json:"lowestDay,omitempty"`
}

// GroupByDay folds logs into one view per local calendar day, oldest first.
// water is keyed by YYYY-MM-DD.
func GroupByDay(food []model.FoodLogEntry, workouts []model.WorkoutLogEntry, water map[string]float64) []DayView {
	foodByDay := map[string][]model.FoodLogEntry{}
	workoutsByDay := map[string][]model.WorkoutLogEntry{}
	days := map[string]struct{}{}
	for _, e := range food {
		d := e.LoggedAt.Local().Format(dayLayout)
		foodByDay[d] = append(foodByDay[d], e)
		days[d] = struct{}{}
	}
	for _, w := range workouts {
		d := w.Timestamp.Local().Format(dayLayout)
		workoutsByDay[d] = append(workoutsByDay[d], w)
		days[d] = struct{}{}
	}
	for d, ml := range water {
		if ml > 0 {
			days[d] = struct{}{}
		}
	}

	out := make([]DayView, 0, len(days))
	for d := range days {
		totals := ComputeTotals(foodByDay[d], workoutsByDay[d], water[d])
		out = append(out, DayView{
			Date:         d,
			Totals:       totals,
			NetCalories:  NetCalories(totals),
			FoodCount:    len(foodByDay[d]),
			WorkoutCount: len(workoutsByDay[d]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Week selects the seven days starting at start from days and rolls them up.
func Week(days []DayView, start time.Time) WeekView {
	y, m, d := start.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 6)
	view := WeekView{
		Start: from.Format(dayLayout),
		End:   to.Format(dayLayout),
		Days:  make([]DayView, 0, 7),
	}
	for _, day := range days {
		if day.Date < view.Start || day.Date > view.End {
			continue
		}
		view.Days = append(view.Days, day)
		view.Totals.Calories += day.Totals.Calories
		view.Totals.Protein += day.Totals.Protein
		view.Totals.Carbs += day.Totals.Carbs
		view.Totals.Fats += day.Totals.Fats
		view.Totals.CaloriesBurned += day.Totals.CaloriesBurned
		view.Totals.Water += day.Totals.Water
	}
	view.DaysWithEntries = len(view.Days)
	if view.DaysWithEntries > 0 {
		div := float64(view.DaysWithEntries)
		view.AverageCalories = view.Totals.Calories / div
		view.AverageBurned = view.Totals.CaloriesBurned / div
		view.AverageNetCalories = NetCalories(view.Totals) / div
		view.HighestDay, view.LowestDay = extremeDays(view.Days)
	}
	return view
}

// StartOfWeek returns the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	y, m, d := t.AddDate(0, 0, -(weekday - 1)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func extremeDays(days []DayView) (*DayView, *DayView) {
	copied := make([]DayView, len(days))
	copy(copied, days)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Totals.Calories < copied[j].Totals.Calories
	})
	low := copied[0]
	high := copied[len(copied)-1]
	return &high, &low
}
