package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
	"github.com/saadjs/fitfuel/internal/workout"
)

// ownedProfile resolves :profileID among the caller's profiles. Profiles of
// other users are reported as not found.
func (s *Server) ownedProfile(c *gin.Context) (model.Profile, bool) {
	p, err := service.ResolveProfile(s.db, claimsOf(c).UserID, c.Param("profileID"))
	if err != nil {
		fail(c, err)
		return model.Profile{}, false
	}
	return p, true
}

// lockProfile serializes mutations of one profile.
func (s *Server) lockProfile(p model.Profile) func() {
	return s.locks.Lock("profile:" + p.ID)
}

func dateParam(c *gin.Context) string {
	if d := c.Query("date"); d != "" {
		return d
	}
	return service.Today()
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (s *Server) listProfiles(c *gin.Context) {
	profiles, err := service.ListProfiles(s.db, claimsOf(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

type profileRequest struct {
	Name        string   `json:"name"`
	WeightKg    *float64 `json:"weightKg"`
	ClearWeight bool     `json:"clearWeight"`
}

func (s *Server) createProfile(c *gin.Context) {
	var req profileRequest
	if !bind(c, &req) {
		return
	}
	p, err := service.CreateProfile(s.db, service.CreateProfileInput{UserID: claimsOf(c).UserID, Name: req.Name, WeightKg: req.WeightKg})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProfile(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProfile(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	var req profileRequest
	if !bind(c, &req) {
		return
	}
	defer s.lockProfile(p)()
	updated, err := service.UpdateProfile(s.db, service.UpdateProfileInput{ID: p.ID, Name: req.Name, WeightKg: req.WeightKg, ClearWeight: req.ClearWeight})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProfile(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	defer s.lockProfile(p)()
	if err := service.DeleteProfile(s.db, p.ID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getGoals(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	g, set, err := service.GetGoals(s.db, p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if !set {
		c.JSON(http.StatusOK, gin.H{"goals": service.DefaultGoals, "default": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": g, "default": false})
}

// setGoals replaces the goals wholesale.
func (s *Server) setGoals(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	var g model.Goals
	if !bind(c, &g) {
		return
	}
	defer s.lockProfile(p)()
	if err := service.SetGoals(s.db, p.ID, g); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": g, "default": false})
	s.publishSummary(p.UserID, p.ID, service.Today())
}

func (s *Server) getWater(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	date := dateParam(c)
	ml, err := service.WaterForDay(s.db, p.ID, date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "water": ml})
}

type waterRequest struct {
	Date string  `json:"date"`
	Ml   float64 `json:"ml"`
	// Set replaces the day's total instead of adding to it.
	Set bool `json:"set"`
}

func (s *Server) changeWater(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	var req waterRequest
	if !bind(c, &req) {
		return
	}
	if req.Date == "" {
		req.Date = service.Today()
	}
	defer s.lockProfile(p)()
	total := req.Ml
	var err error
	if req.Set {
		err = service.SetWater(s.db, p.ID, req.Date, req.Ml)
	} else {
		total, err = service.AddWater(s.db, p.ID, req.Date, req.Ml)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": req.Date, "water": total})
	s.publishSummary(p.UserID, p.ID, req.Date)
}

// getLogs returns one day with ?date= or an inclusive range with ?from=&to=.
func (s *Server) getLogs(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	from, to := c.Query("from"), c.Query("to")
	if from != "" || to != "" {
		rl, err := service.GetLogsByRange(s.db, p.ID, from, to)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, rl)
		return
	}
	dl, err := service.GetLogByDate(s.db, p.ID, dateParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dl)
}

type foodRequest struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fats     float64   `json:"fats"`
	Meal     string    `json:"meal"`
	LoggedAt time.Time `json:"loggedAt"`
}

func (s *Server) addFood(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	var req foodRequest
	if !bind(c, &req) {
		return
	}
	defer s.lockProfile(p)()
	entry, err := service.AddFoodLog(s.db, service.AddFoodInput{
		ProfileID: p.ID,
		ID:        req.ID,
		Name:      req.Name,
		Calories:  req.Calories,
		Protein:   req.Protein,
		Carbs:     req.Carbs,
		Fats:      req.Fats,
		Meal:      req.Meal,
		LoggedAt:  req.LoggedAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
	s.publishSummary(p.UserID, p.ID, service.DayOf(entry.LoggedAt))
}

type catalogFoodRequest struct {
	FoodID   string    `json:"foodId" binding:"required"`
	Servings float64   `json:"servings"`
	Meal     string    `json:"meal"`
	LoggedAt time.Time `json:"loggedAt"`
}

func (s *Server) logCatalogFood(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	var req catalogFoodRequest
	if !bind(c, &req) {
		return
	}
	defer s.lockProfile(p)()
	entry, err := service.LogCatalogFood(s.db, p.ID, req.FoodID, req.Servings, req.Meal, req.LoggedAt)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
	s.publishSummary(p.UserID, p.ID, service.DayOf(entry.LoggedAt))
}

func (s *Server) removeFood(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	defer s.lockProfile(p)()
	if err := service.RemoveFoodLog(s.db, p.ID, c.Param("entryID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
	s.publishSummary(p.UserID, p.ID, dateParam(c))
}

type workoutRequest struct {
	ID              string    `json:"id"`
	ExerciseID      string    `json:"exerciseId" binding:"required"`
	Reps            int       `json:"reps"`
	Sets            int       `json:"sets"`
	DurationMinutes float64   `json:"durationMinutes"`
	At              time.Time `json:"timestamp"`
}

func (s *Server) logWorkout(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	var req workoutRequest
	if !bind(c, &req) {
		return
	}
	defer s.lockProfile(p)()
	entry, err := service.LogWorkout(s.db, service.LogWorkoutInput{
		ProfileID:       p.ID,
		ID:              req.ID,
		ExerciseID:      req.ExerciseID,
		Reps:            req.Reps,
		Sets:            req.Sets,
		DurationMinutes: req.DurationMinutes,
		At:              req.At,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
	s.publishSummary(p.UserID, p.ID, service.DayOf(entry.Timestamp))
}

func (s *Server) deleteWorkout(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	defer s.lockProfile(p)()
	if err := service.DeleteWorkoutLog(s.db, p.ID, c.Param("entryID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
	s.publishSummary(p.UserID, p.ID, dateParam(c))
}

type estimateRequest struct {
	ExerciseID      string  `json:"exerciseId" binding:"required"`
	Reps            int     `json:"reps"`
	Sets            int     `json:"sets"`
	DurationMinutes float64 `json:"durationMinutes"`
	WeightKg        float64 `json:"weightKg"`
}

func (s *Server) estimateWorkout(c *gin.Context) {
	var req estimateRequest
	if !bind(c, &req) {
		return
	}
	ex, err := service.GetExercise(s.db, req.ExerciseID)
	if err != nil {
		fail(c, err)
		return
	}
	kcal, err := workout.Estimate(ex, workout.Params{Reps: req.Reps, Sets: req.Sets, DurationMinutes: req.DurationMinutes}, req.WeightKg)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exerciseId": ex.ID, "caloriesBurned": kcal})
}

func (s *Server) summary(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	sum, err := service.DailySummary(s.db, p.ID, dateParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) weekHistory(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	week, err := service.WeekHistory(s.db, p.ID, dateParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (s *Server) getSession(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	sess, err := service.LoadSession(s.db, p.ID, c.Param("date"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(c.Param("date"), sess))
}

type startTaskRequest struct {
	ExerciseID string        `json:"exerciseId" binding:"required"`
	Sets       []workout.Set `json:"sets"`
}

func (s *Server) startTask(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	var req startTaskRequest
	if !bind(c, &req) {
		return
	}
	defer s.lockProfile(p)()
	task, err := service.StartSessionTask(s.db, service.StartTaskInput{ProfileID: p.ID, ExerciseID: req.ExerciseID, Date: c.Param("date"), Sets: req.Sets})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	defer s.lockProfile(p)()
	if err := service.DeleteSessionTask(s.db, p.ID, c.Param("taskID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
	s.publishSummary(p.UserID, p.ID, c.Param("date"))
}

// toggleSet flips one set and returns the session with the log change it
// caused.
func (s *Server) toggleSet(c *gin.Context) {
	p, ok := s.ownedProfile(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "set index must be an integer"})
		return
	}
	date := c.Param("date")
	defer s.lockProfile(p)()
	sess, change, err := service.ToggleSessionSet(s.db, p.ID, date, c.Param("taskID"), index, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	resp := sessionResponse(date, sess)
	resp["change"] = change.Kind.String()
	c.JSON(http.StatusOK, resp)
	s.publishSummary(p.UserID, p.ID, date)
}

func sessionResponse(date string, sess workout.Session) gin.H {
	return gin.H{"date": date, "tasks": sess.Tasks, "log": sess.Log}
}
