package handler

import (
	"net/http"

	"admin-console/internal/logger"

	"github.com/gin-gonic/gin"
)

type forgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
		return
	}

	if err := h.backend.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		status, message := backendStatus(err)
		logger.Warn("forgot-password failed", map[string]any{
			"status": status,
			"error":  err.Error(),
		})
		c.JSON(status, gin.H{"message": message})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "if the account exists, a reset link has been sent"})
}
