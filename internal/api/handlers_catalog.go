package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/fitfuel/internal/service"
)

func (s *Server) searchFoods(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	foods, err := service.SearchFoods(s.db, service.FoodFilter{Query: c.Query("q"), Category: c.Query("category"), Limit: limit})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (s *Server) foodCategories(c *gin.Context) {
	cats, err := service.FoodCategories(s.db)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (s *Server) getFood(c *gin.Context) {
	f, err := service.GetFood(s.db, c.Param("foodID"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) listExercises(c *gin.Context) {
	list, err := service.ListExercises(s.db, service.ExerciseFilter{Query: c.Query("q"), Category: c.Query("category"), Type: c.Query("type")})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type foodItemRequest struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	ServingSize string  `json:"servingSize"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fats        float64 `json:"fats"`
	Barcode     string  `json:"barcode"`
}

func (r foodItemRequest) input() service.FoodInput {
	return service.FoodInput{
		Name:        r.Name,
		Brand:       r.Brand,
		Category:    r.Category,
		ServingSize: r.ServingSize,
		Calories:    r.Calories,
		Protein:     r.Protein,
		Carbs:       r.Carbs,
		Fats:        r.Fats,
		Barcode:     r.Barcode,
		Source:      "admin",
	}
}

func (s *Server) createFood(c *gin.Context) {
	var req foodItemRequest
	if !bind(c, &req) {
		return
	}
	f, err := service.CreateFood(s.db, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) updateFood(c *gin.Context) {
	var req foodItemRequest
	if !bind(c, &req) {
		return
	}
	f, err := service.UpdateFood(s.db, c.Param("foodID"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) deleteFood(c *gin.Context) {
	if err := service.DeleteFood(s.db, c.Param("foodID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type importRequest struct {
	Barcode string `json:"barcode"`
	Query   string `json:"query"`
	Limit   int    `json:"limit"`
}

// importFoods pulls foods from the configured provider by barcode or by
// search query.
func (s *Server) importFoods(c *gin.Context) {
	if s.foods == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "food provider is not configured"})
		return
	}
	var req importRequest
	if !bind(c, &req) {
		return
	}
	switch {
	case req.Barcode != "":
		item, created, err := service.ImportFoodByBarcode(c.Request.Context(), s.db, s.foods, req.Barcode)
		if err != nil {
			fail(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, item)
	case req.Query != "":
		items, err := service.ImportFoodSearch(c.Request.Context(), s.db, s.foods, req.Query, req.Limit)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "barcode or query is required"})
	}
}

type exerciseRequest struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Category       string   `json:"category"`
	CaloriesPerRep *float64 `json:"caloriesPerRep"`
	MET            *float64 `json:"met"`
}

func (r exerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{ID: r.ID, Name: r.Name, Type: r.Type, Category: r.Category, CaloriesPerRep: r.CaloriesPerRep, MET: r.MET}
}

func (s *Server) createExercise(c *gin.Context) {
	var req exerciseRequest
	if !bind(c, &req) {
		return
	}
	ex, err := service.CreateExercise(s.db, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ex)
}

func (s *Server) updateExercise(c *gin.Context) {
	var req exerciseRequest
	if !bind(c, &req) {
		return
	}
	ex, err := service.UpdateExercise(s.db, c.Param("exerciseID"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

func (s *Server) deleteExercise(c *gin.Context) {
	if err := service.DeleteExercise(s.db, c.Param("exerciseID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listRestaurants(c *gin.Context) {
	list, err := service.ListRestaurants(s.db, c.Query("cuisine"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) listMenu(c *gin.Context) {
	r, err := service.GetRestaurant(s.db, c.Param("restaurantID"))
	if err != nil {
		fail(c, err)
		return
	}
	all := claimsOf(c).Admin && c.Query("all") == "true"
	menu, err := service.ListMenu(s.db, r.ID, all)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": r, "items": menu})
}

type restaurantRequest struct {
	Name    string `json:"name" binding:"required"`
	Cuisine string `json:"cuisine"`
}

func (s *Server) createRestaurant(c *gin.Context) {
	var req restaurantRequest
	if !bind(c, &req) {
		return
	}
	r, err := service.CreateRestaurant(s.db, req.Name, req.Cuisine)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) deleteRestaurant(c *gin.Context) {
	if err := service.DeleteRestaurant(s.db, c.Param("restaurantID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type menuItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Calories    float64 `json:"calories"`
	Category    string  `json:"category"`
	Available   *bool   `json:"available"`
}

func (r menuItemRequest) input(restaurantID string) service.MenuItemInput {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return service.MenuItemInput{
		RestaurantID: restaurantID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Calories:     r.Calories,
		Category:     r.Category,
		Available:    available,
	}
}

func (s *Server) addMenuItem(c *gin.Context) {
	var req menuItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := service.AddMenuItem(s.db, req.input(c.Param("restaurantID")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) updateMenuItem(c *gin.Context) {
	current, err := service.GetMenuItem(s.db, c.Param("itemID"))
	if err != nil {
		fail(c, err)
		return
	}
	var req menuItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := service.UpdateMenuItem(s.db, current.ID, req.input(current.RestaurantID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteMenuItem(c *gin.Context) {
	if err := service.DeleteMenuItem(s.db, c.Param("itemID")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
