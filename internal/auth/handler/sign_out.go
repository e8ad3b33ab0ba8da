package handler

import (
	"net/http"

	"admin-console/internal/logger"
	"admin-console/internal/requestid"
	"admin-console/internal/session"

	"github.com/gin-gonic/gin"
)

// SignOut always succeeds: the cookies are expired and the operator is sent
// back to the sign-in screen.
func (h *Handler) SignOut(c *gin.Context) {
	store := h.store(c, session.WithNavigate(func(path string) {
		c.Redirect(http.StatusFound, path)
	}))

	if user, ok := store.Peek(); ok {
		logger.Info("sign-out", map[string]any{
			"email":      user.Email,
			"request_id": requestid.FromContext(c.Request.Context()),
		})
	}

	store.SignOut()
}
