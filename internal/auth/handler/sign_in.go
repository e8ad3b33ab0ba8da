package handler

import (
	"net/http"
	"strings"

	"admin-console/internal/logger"
	"admin-console/internal/requestid"
	"admin-console/internal/session"

	"github.com/gin-gonic/gin"
)

type signInRequest struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl"`
}

func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBind(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	res, err := h.backend.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, message := backendStatus(err)
		logger.Warn("sign-in failed", map[string]any{
			"email":      req.Email,
			"status":     status,
			"error":      err.Error(),
			"request_id": requestid.FromContext(c.Request.Context()),
		})
		c.JSON(status, gin.H{"message": message})
		return
	}

	store := h.store(c)
	if err := store.SignIn(res.User, res.Token); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "invalid login response"})
		return
	}

	logger.Info("sign-in succeeded", map[string]any{
		"email":      res.User.Email,
		"role":       res.User.Role,
		"ip":         c.ClientIP(),
		"request_id": requestid.FromContext(c.Request.Context()),
	})

	c.JSON(http.StatusOK, gin.H{
		"user":     store.Current().User,
		"redirect": safeCallback(req.CallbackURL),
	})
}

// safeCallback keeps post-login redirects on this origin.
func safeCallback(callback string) string {
	if !strings.HasPrefix(callback, "/") ||
		strings.HasPrefix(callback, "//") ||
		strings.HasPrefix(callback, "/\\") ||
		strings.HasPrefix(callback, session.SignInPath) {
		return session.HomePath
	}
	return callback
}
