package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	archivedomain "github.com/smallbiznis/menuboard/internal/archive/domain"
)

func (s *Server) ListRecentArchiveEntries(c *gin.Context) {
	entries, err := s.archiveSvc.Recent(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) ListArchiveEntriesInRange(c *gin.Context) {
	start, err := timeQuery(c, "start")
	if err != nil {
		AbortWithError(c, archivedomain.ErrInvalidRange)
		return
	}
	end, err := timeQuery(c, "end")
	if err != nil {
		AbortWithError(c, archivedomain.ErrInvalidRange)
		return
	}

	entries, err := s.archiveSvc.InRange(c.Request.Context(), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) GetItemHistory(c *gin.Context) {
	entries, err := s.archiveSvc.History(c.Request.Context(), c.Param("id"), intQuery(c, "limit"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) GetItemStats(c *gin.Context) {
	stats, err := s.archiveSvc.ItemStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) GetMenuStats(c *gin.Context) {
	stats, err := s.archiveSvc.MenuStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func intQuery(c *gin.Context, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

func timeQuery(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	return time.Parse(time.RFC3339, raw)
}
