package fitfuel

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
	"github.com/saadjs/fitfuel/internal/workout"
)

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Log workouts and run workout sessions",
}

var (
	workoutReps     int
	workoutSets     int
	workoutMinutes  float64
	workoutDate     string
	workoutTime     string
	workoutWeight   float64
	workoutListDate string
)

var workoutLogCmd = &cobra.Command{
	Use:   "log <exercise>",
	Short: "Log a catalog exercise; calories are estimated from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseDateTimeOrNow(workoutDate, workoutTime)
		if err != nil {
			return err
		}
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			e, err := service.LogWorkout(sqldb, service.LogWorkoutInput{
				ProfileID:       p.ID,
				ExerciseID:      args[0],
				Reps:            workoutReps,
				Sets:            workoutSets,
				DurationMinutes: workoutMinutes,
				At:              at,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %s, %.1f kcal (%s)\n", e.Name, workoutDetail(e), e.CaloriesBurned, e.ID)
			return nil
		})
	},
}

var workoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workouts for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			entries, err := service.ListWorkoutLogs(sqldb, service.WorkoutLogFilter{ProfileID: p.ID, Date: dateOrToday(workoutListDate)})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tTIME\tEXERCISE\tDETAIL\tKCAL")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%.1f\n", e.ID, e.Timestamp.Local().Format("15:04"), e.Name, workoutDetail(e), e.CaloriesBurned)
			}
			return nil
		})
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a workout entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			if err := service.DeleteWorkoutLog(sqldb, p.ID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted workout entry %s\n", args[0])
			return nil
		})
	},
}

var workoutEstimateCmd = &cobra.Command{
	Use:   "estimate <exercise>",
	Short: "Estimate calories burned without logging",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			ex, err := service.GetExercise(sqldb, args[0])
			if err != nil {
				return err
			}
			weight := workoutWeight
			if weight <= 0 {
				weight = service.BodyWeight(p)
			}
			kcal, err := workout.Estimate(ex, workout.Params{Reps: workoutReps, Sets: workoutSets, DurationMinutes: workoutMinutes}, weight)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f kcal\n", ex.Name, kcal)
			return nil
		})
	},
}

func workoutDetail(e model.WorkoutLogEntry) string {
	switch {
	case e.Reps != nil && e.Sets != nil:
		return fmt.Sprintf("%d reps x %d sets", *e.Reps, *e.Sets)
	case e.Duration != nil:
		return fmt.Sprintf("%g min", *e.Duration)
	default:
		return "-"
	}
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Plan sets for a day and tick them off",
}

var (
	sessionDate    string
	sessionReps    string
	sessionMinutes string
)

var sessionStartCmd = &cobra.Command{
	Use:   "start <exercise>",
	Short: "Add an exercise with planned sets to the day's session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := plannedSets(sessionReps, sessionMinutes)
		if err != nil {
			return err
		}
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			task, err := service.StartSessionTask(sqldb, service.StartTaskInput{
				ProfileID:  p.ID,
				ExerciseID: args[0],
				Date:       dateOrToday(sessionDate),
				Sets:       sets,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Planned %d set(s) of %s (task %s)\n", len(task.Sets), task.Exercise.Name, task.ID)
			return nil
		})
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the day's session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			date := dateOrToday(sessionDate)
			sess, err := service.LoadSession(sqldb, p.ID, date)
			if err != nil {
				return err
			}
			printSession(cmd, date, sess)
			return nil
		})
	},
}

var sessionToggleCmd = &cobra.Command{
	Use:   "toggle <task-id> <set-number>",
	Short: "Mark a set done or not done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseIndexArg("set number", args[1])
		if err != nil {
			return err
		}
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			date := dateOrToday(sessionDate)
			sess, change, err := service.ToggleSessionSet(sqldb, p.ID, date, args[0], n-1, time.Now())
			if err != nil {
				return err
			}
			switch change.Kind {
			case workout.ChangeUpsert:
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s: %.1f kcal\n", change.Entry.Name, change.Entry.CaloriesBurned)
			case workout.ChangeDelete:
				fmt.Fprintln(cmd.OutOrStdout(), "Removed log entry; no sets done")
			}
			printSession(cmd, date, sess)
			return nil
		})
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Remove a planned exercise and its log entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProfile(func(sqldb *sql.DB, p model.Profile) error {
			if err := service.DeleteSessionTask(sqldb, p.ID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		})
	},
}

func printSession(cmd *cobra.Command, date string, sess workout.Session) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s\n", date)
	if len(sess.Tasks) == 0 {
		fmt.Fprintln(out, "No exercises planned")
		return
	}
	for _, t := range sess.Tasks {
		fmt.Fprintf(out, "%s\t%s\t%d/%d done\n", t.ID, t.Exercise.Name, t.CompletedSets(), len(t.Sets))
		for i, s := range t.Sets {
			mark := "[ ]"
			if s.Done {
				mark = "[x]"
			}
			if t.Exercise.Type == model.ExerciseDuration {
				fmt.Fprintf(out, "  %s %d: %g min\n", mark, i+1, s.DurationMinutes)
			} else {
				fmt.Fprintf(out, "  %s %d: %d reps\n", mark, i+1, s.Reps)
			}
		}
	}
}

// plannedSets parses comma-separated reps or minutes, one value per set.
func plannedSets(reps, minutes string) ([]workout.Set, error) {
	if (reps == "") == (minutes == "") {
		return nil, fmt.Errorf("set exactly one of --reps or --minutes")
	}
	raw := reps
	if raw == "" {
		raw = minutes
	}
	out := make([]workout.Set, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if reps != "" {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid reps %q", part)
			}
			out = append(out, workout.Set{Reps: n})
			continue
		}
		m, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid minutes %q", part)
		}
		out = append(out, workout.Set{DurationMinutes: m})
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(workoutCmd)
	workoutCmd.AddCommand(workoutLogCmd, workoutListCmd, workoutDeleteCmd, workoutEstimateCmd, sessionCmd)
	sessionCmd.AddCommand(sessionStartCmd, sessionShowCmd, sessionToggleCmd, sessionDeleteCmd)

	for _, c := range []*cobra.Command{workoutLogCmd, workoutEstimateCmd} {
		c.Flags().IntVar(&workoutReps, "reps", 0, "Reps per set")
		c.Flags().IntVar(&workoutSets, "sets", 0, "Sets (default 1)")
		c.Flags().Float64Var(&workoutMinutes, "minutes", 0, "Duration in minutes")
	}
	workoutLogCmd.Flags().StringVar(&workoutDate, "date", "", "Date YYYY-MM-DD (default now)")
	workoutLogCmd.Flags().StringVar(&workoutTime, "time", "", "Time HH:MM")
	workoutEstimateCmd.Flags().Float64Var(&workoutWeight, "weight", 0, "Body weight kg (default profile weight)")
	workoutListCmd.Flags().StringVar(&workoutListDate, "date", "", "Date YYYY-MM-DD (default today)")

	sessionCmd.PersistentFlags().StringVar(&sessionDate, "date", "", "Session date YYYY-MM-DD (default today)")
	sessionStartCmd.Flags().StringVar(&sessionReps, "reps", "", "Comma-separated reps per set, e.g. 10,12,12")
	sessionStartCmd.Flags().StringVar(&sessionMinutes, "minutes", "", "Comma-separated minutes per set")
}
