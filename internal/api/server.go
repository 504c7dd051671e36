package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/fitfuel/internal/auth"
	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/ledger"
	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/payment"
	"github.com/saadjs/fitfuel/internal/provider/openfoodfacts"
	"github.com/saadjs/fitfuel/internal/service"
	"github.com/saadjs/fitfuel/internal/workout"
)

type Options struct {
	DB       *sql.DB
	Store    cart.Store
	Issuer   *auth.Issuer
	Gateway  service.PaymentGateway
	Foods    service.FoodProvider
	Currency string
	// PaymentKeyID is handed to clients so they can open the gateway's
	// checkout for a created order.
	PaymentKeyID string
}

// Server is the HTTP surface over the service layer. Mutations on the same
// profile or cart are serialized.
type Server struct {
	db           *sql.DB
	store        cart.Store
	issuer       *auth.Issuer
	gateway      service.PaymentGateway
	foods        service.FoodProvider
	currency     string
	paymentKeyID string
	locks        *keyedMutex
	hub          *Hub
}

func New(opts Options) (*Server, error) {
	if opts.DB == nil {
		return nil, errors.New("api: database is required")
	}
	if opts.Issuer == nil {
		return nil, errors.New("api: token issuer is required")
	}
	store := opts.Store
	if store == nil {
		return nil, errors.New("api: cart store is required")
	}
	return &Server{
		db:           opts.DB,
		store:        store,
		issuer:       opts.Issuer,
		gateway:      opts.Gateway,
		foods:        opts.Foods,
		currency:     opts.Currency,
		paymentKeyID: opts.PaymentKeyID,
		locks:        newKeyedMutex(),
		hub:          NewHub(),
	}, nil
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", s.register)
		authGroup.POST("/login", s.login)
	}

	api := r.Group("/")
	api.Use(s.requireAuth())
	{
		api.GET("/me", s.me)
		api.GET("/ws", s.websocket)

		api.GET("/profiles", s.listProfiles)
		api.POST("/profiles", s.createProfile)
		p := api.Group("/profiles/:profileID")
		{
			p.GET("", s.getProfile)
			p.PATCH("", s.updateProfile)
			p.DELETE("", s.deleteProfile)
			p.GET("/goals", s.getGoals)
			p.PUT("/goals", s.setGoals)
			p.GET("/water", s.getWater)
			p.POST("/water", s.changeWater)
			p.GET("/logs", s.getLogs)
			p.POST("/food", s.addFood)
			p.POST("/food/catalog", s.logCatalogFood)
			p.DELETE("/food/:entryID", s.removeFood)
			p.POST("/workouts", s.logWorkout)
			p.DELETE("/workouts/:entryID", s.deleteWorkout)
			p.GET("/summary", s.summary)
			p.GET("/history/week", s.weekHistory)
			p.GET("/sessions/:date", s.getSession)
			p.POST("/sessions/:date/tasks", s.startTask)
			p.DELETE("/sessions/:date/tasks/:taskID", s.deleteTask)
			p.POST("/sessions/:date/tasks/:taskID/sets/:index/toggle", s.toggleSet)
		}

		api.POST("/workouts/estimate", s.estimateWorkout)

		api.GET("/catalog/foods", s.searchFoods)
		api.GET("/catalog/foods/categories", s.foodCategories)
		api.GET("/catalog/foods/:foodID", s.getFood)
		api.GET("/catalog/exercises", s.listExercises)
		api.GET("/restaurants", s.listRestaurants)
		api.GET("/restaurants/:restaurantID/menu", s.listMenu)

		api.GET("/cart", s.viewCart)
		api.POST("/cart/items", s.addCartItem)
		api.PATCH("/cart/items/:itemID", s.changeCartItem)
		api.DELETE("/cart/items/:itemID", s.removeCartItem)
		api.DELETE("/cart", s.clearCart)
		api.POST("/checkout", s.checkout)
		api.POST("/checkout/verify", s.verifyPayment)
		api.GET("/orders", s.listOrders)

		admin := api.Group("/admin")
		admin.Use(requireAdmin())
		{
			admin.POST("/foods", s.createFood)
			admin.PUT("/foods/:foodID", s.updateFood)
			admin.DELETE("/foods/:foodID", s.deleteFood)
			admin.POST("/foods/import", s.importFoods)
			admin.POST("/exercises", s.createExercise)
			admin.PUT("/exercises/:exerciseID", s.updateExercise)
			admin.DELETE("/exercises/:exerciseID", s.deleteExercise)
			admin.POST("/restaurants", s.createRestaurant)
			admin.DELETE("/restaurants/:restaurantID", s.deleteRestaurant)
			admin.POST("/restaurants/:restaurantID/menu", s.addMenuItem)
			admin.PUT("/menu/:itemID", s.updateMenuItem)
			admin.DELETE("/menu/:itemID", s.deleteMenuItem)
		}
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}

// fail writes err as a JSON error with a status derived from its kind. Errors
// of no known kind are server faults.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var validation *ledger.ValidationError
	var invalidExercise *workout.InvalidExerciseError
	var gatewayErr *payment.APIError
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, workout.ErrUnknownTask), errors.Is(err, openfoodfacts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, payment.ErrSignatureMismatch):
		return http.StatusPaymentRequired
	case errors.As(err, &gatewayErr), errors.Is(err, payment.ErrUnavailable), errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.As(err, &validation), errors.As(err, &invalidExercise),
		errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, workout.ErrSetOutOfRange), errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
