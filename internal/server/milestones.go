package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/reelforge/reelforge/internal/catalog/domain"
)

func (s *Server) ListMilestones(c *gin.Context) {
	resp, err := s.catalogSvc.ListMilestones(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDiscountTiers(c *gin.Context) {
	resp, err := s.catalogSvc.ListDiscountTiers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateMilestone(c *gin.Context) {
	var req catalogdomain.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.TierName = strings.TrimSpace(req.TierName)

	resp, err := s.catalogSvc.CreateMilestone(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateDiscountTier(c *gin.Context) {
	var req catalogdomain.CreateDiscountTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.CreateDiscountTier(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
