package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	settingsdomain "github.com/smallbiznis/menuboard/internal/settings/domain"
)

func (s *Server) GetSetting(c *gin.Context) {
	setting, err := s.settingsSvc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (s *Server) ListSettings(c *gin.Context) {
	settings, err := s.settingsSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpsertSetting takes the raw body as the value document; the key is
// the path segment.
func (s *Server) UpsertSetting(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	setting, err := s.settingsSvc.Upsert(c.Request.Context(), c.Param("key"), json.RawMessage(body))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (s *Server) DeleteSetting(c *gin.Context) {
	if err := s.settingsSvc.Delete(c.Request.Context(), c.Param("key")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListThemePresets(c *gin.Context) {
	presets, err := s.settingsSvc.ListPresets(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

func (s *Server) SaveThemePreset(c *gin.Context) {
	var req settingsdomain.PresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	preset, err := s.settingsSvc.SavePreset(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, preset)
}

func (s *Server) ApplyThemePreset(c *gin.Context) {
	setting, err := s.settingsSvc.ApplyPreset(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (s *Server) DeleteThemePreset(c *gin.Context) {
	if err := s.settingsSvc.DeletePreset(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
