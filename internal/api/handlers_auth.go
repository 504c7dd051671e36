package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saadjs/fitfuel/internal/auth"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
)

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// register creates a user and its first profile. The first user of a fresh
// database is the admin.
func (s *Server) register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	unlock := s.locks.Lock("users")
	defer unlock()
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM users`).Scan(&count); err != nil {
		fail(c, err)
		return
	}
	u, err := service.CreateUser(s.db, req.Email, hash, count == 0)
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := service.CreateProfile(s.db, service.CreateProfileInput{UserID: u.ID, Name: service.DefaultProfileName}); err != nil {
		fail(c, err)
		return
	}
	s.respondWithToken(c, http.StatusCreated, u)
}

func (s *Server) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := service.FindUserByEmail(s.db, req.Email)
	if err != nil {
		fail(c, auth.ErrInvalidCredentials)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		fail(c, err)
		return
	}
	s.respondWithToken(c, http.StatusOK, u)
}

func (s *Server) respondWithToken(c *gin.Context, status int, u model.User) {
	tok, err := s.issuer.Issue(auth.Claims{UserID: u.ID, Admin: u.IsAdmin})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, tokenResponse{Token: tok, User: u})
}

func (s *Server) me(c *gin.Context) {
	u, err := service.GetUser(s.db, claimsOf(c).UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
		return
	}
	profiles, err := service.ListProfiles(s.db, u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "profiles": profiles})
}
