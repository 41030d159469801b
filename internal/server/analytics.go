package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/menuboard/internal/analytics/domain"
)

func (s *Server) StartDisplaySession(c *gin.Context) {
	var req analyticsdomain.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session, err := s.analyticsSvc.StartSession(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type heartbeatRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) DisplayHeartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.analyticsSvc.Heartbeat(c.Request.Context(), req.SessionID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) EndDisplaySession(c *gin.Context) {
	session, err := s.analyticsSvc.EndSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type rollupRequest struct {
	Date string `json:"date"`
}

func (s *Server) RunAnalyticsRollup(c *gin.Context) {
	var req rollupRequest
	_ = c.ShouldBindJSON(&req)

	aggregates, err := s.analyticsSvc.AggregateDaily(c.Request.Context(), req.Date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"aggregates": aggregates})
}

func (s *Server) GetDailyAnalytics(c *gin.Context) {
	aggregates, err := s.analyticsSvc.Aggregates(c.Request.Context(), c.Query("date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"aggregates": aggregates})
}
