package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Session reports who is signed in. It is the console UI's only source for
// the current operator; invalid cookies are cleared on the way.
func (h *Handler) Session(c *gin.Context) {
	sess := h.store(c).Restore()
	if sess.User == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"user": nil, "loading": false})
		return
	}
	c.JSON(http.StatusOK, sess)
}
