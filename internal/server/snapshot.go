package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createSnapshotRequest struct {
	Date string `json:"date"`
}

func (s *Server) CreateSnapshot(c *gin.Context) {
	var req createSnapshotRequest
	// An empty body means "snapshot today".
	_ = c.ShouldBindJSON(&req)

	snapshot, err := s.snapshotSvc.CreateDailySnapshot(c.Request.Context(), req.Date)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) ListSnapshotDates(c *gin.Context) {
	dates, err := s.snapshotSvc.ListDates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

func (s *Server) GetSnapshot(c *gin.Context) {
	snapshot, err := s.snapshotSvc.Get(c.Request.Context(), c.Param("date"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
