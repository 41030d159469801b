package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerSheetSync runs the spreadsheet reconciliation inline. Row
// level problems come back embedded in the result; only a source
// failure is an HTTP error.
func (s *Server) TriggerSheetSync(c *gin.Context) {
	result, err := s.syncSvc.SyncFromSheet(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetSyncState(c *gin.Context) {
	state, err := s.syncSvc.State(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
