package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	layoutdomain "github.com/smallbiznis/menuboard/internal/layout/domain"
)

func (s *Server) ListLayouts(c *gin.Context) {
	layouts, err := s.layoutSvc.List(c.Request.Context(), c.Query("page_type"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"layouts": layouts})
}

func (s *Server) CreateLayout(c *gin.Context) {
	var req layoutdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	layout, err := s.layoutSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, layout)
}

func (s *Server) GetLayout(c *gin.Context) {
	layout, err := s.layoutSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

func (s *Server) UpdateLayout(c *gin.Context) {
	var req layoutdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	layout, err := s.layoutSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

func (s *Server) ActivateLayout(c *gin.Context) {
	layout, err := s.layoutSvc.SetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

// GetActiveLayout serves the board configuration for a page. A page
// with no active layout gets the built-in default rather than a 404.
func (s *Server) GetActiveLayout(c *gin.Context) {
	layout, err := s.layoutSvc.ActiveForPage(c.Request.Context(), c.Query("page_type"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

func (s *Server) DeleteLayout(c *gin.Context) {
	if err := s.layoutSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
