package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	offeringsdomain "github.com/smallbiznis/menuboard/internal/offerings/domain"
)

func (s *Server) ListEventPackages(c *gin.Context) {
	activeOnly := true
	if v := boolQuery(c, "active_only"); v != nil {
		activeOnly = *v
	}
	packages, err := s.offeringsSvc.ListEventPackages(c.Request.Context(), activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_packages": packages})
}

func (s *Server) CreateEventPackage(c *gin.Context) {
	var req offeringsdomain.EventPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pkg, err := s.offeringsSvc.CreateEventPackage(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

func (s *Server) UpdateEventPackage(c *gin.Context) {
	var req offeringsdomain.EventPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pkg, err := s.offeringsSvc.UpdateEventPackage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (s *Server) DeleteEventPackage(c *gin.Context) {
	if err := s.offeringsSvc.DeleteEventPackage(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListCateringMenus(c *gin.Context) {
	activeOnly := true
	if v := boolQuery(c, "active_only"); v != nil {
		activeOnly = *v
	}
	menus, err := s.offeringsSvc.ListCateringMenus(c.Request.Context(), activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"catering_menus": menus})
}

func (s *Server) CreateCateringMenu(c *gin.Context) {
	var req offeringsdomain.CateringMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	menu, err := s.offeringsSvc.CreateCateringMenu(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, menu)
}

func (s *Server) UpdateCateringMenu(c *gin.Context) {
	var req offeringsdomain.CateringMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	menu, err := s.offeringsSvc.UpdateCateringMenu(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

func (s *Server) DeleteCateringMenu(c *gin.Context) {
	if err := s.offeringsSvc.DeleteCateringMenu(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListSchoolMealsForWeek(c *gin.Context) {
	year := intQuery(c, "year")
	week := intQuery(c, "week")

	meals, err := s.offeringsSvc.ListSchoolMealsForWeek(c.Request.Context(), year, week)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"school_meals": meals})
}

func (s *Server) CreateSchoolMeal(c *gin.Context) {
	var req offeringsdomain.SchoolMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	meal, err := s.offeringsSvc.CreateSchoolMeal(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

func (s *Server) UpdateSchoolMeal(c *gin.Context) {
	var req offeringsdomain.SchoolMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	meal, err := s.offeringsSvc.UpdateSchoolMeal(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

func (s *Server) DeleteSchoolMeal(c *gin.Context) {
	if err := s.offeringsSvc.DeleteSchoolMeal(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
