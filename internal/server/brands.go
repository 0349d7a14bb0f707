package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	branddomain "github.com/reelforge/reelforge/internal/brand/domain"
)

func (s *Server) CreateBrand(c *gin.Context) {
	var req branddomain.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.UserID = s.userID(c)
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.brandSvc.CreateBrand(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBrandUnlocks(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.brandSvc.GetUnlockState(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBrandLedger(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.brandSvc.GetLedger(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
