package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rushteam/citykit/core"
)

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.metrics.Handler())
	r.GET("/metadata", s.handleMetadata)

	r.POST("/recommend", s.handleRecommend)
	r.POST("/next_city", s.handleNextCity)
	r.POST("/swipe", s.handleSwipe)
	r.PUT("/profile/:user_id", s.handleSaveProfile)
	r.GET("/favorites/:user_id", s.handleFavorites)
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.rec.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMetadata(c *gin.Context) {
	c.JSON(http.StatusOK, s.rec.Metadata())
}

func (s *Server) handleRecommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.K == nil {
		if q := c.Query("k"); q != "" {
			k, err := strconv.Atoi(q)
			if err != nil {
				badRequest(c, err)
				return
			}
			req.K = &k
		}
	}

	cities, err := s.rec.Recommend(c.Request.Context(), req.UserID, &req.UserAnswers, req.K)
	if err != nil {
		handleError(c, err)
		return
	}
	s.metrics.Recommended.Observe(float64(len(cities)))
	c.JSON(http.StatusOK, RecommendResponse{Recommendations: cities})
}

func (s *Server) handleNextCity(c *gin.Context) {
	var req NextCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	city, err := s.rec.NextCity(c.Request.Context(), req.UserID, &req.UserAnswers)
	if errors.Is(err, core.ErrNoMoreCities) {
		s.metrics.CatalogExhausted.Inc()
		c.JSON(http.StatusNotFound, gin.H{"done": true})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NextCityResponse{City: city})
}

func (s *Server) handleSwipe(c *gin.Context) {
	var req SwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.rec.RecordSwipe(c.Request.Context(), req.UserID, req.CityID, *req.Liked); err != nil {
		handleError(c, err)
		return
	}
	s.metrics.SwipesTotal.WithLabelValues(strconv.FormatBool(*req.Liked)).Inc()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleSaveProfile(c *gin.Context) {
	var answers core.UserAnswers
	if err := c.ShouldBindJSON(&answers); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.rec.SaveProfile(c.Request.Context(), c.Param("user_id"), &answers); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleFavorites(c *gin.Context) {
	cities, err := s.rec.Favorites(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, FavoritesResponse{Cities: cities})
}
