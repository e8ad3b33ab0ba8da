package handler

import (
	"context"
	"errors"
	"net/http"

	"admin-console/internal/backend"
	"admin-console/internal/session"

	"github.com/gin-gonic/gin"
)

// Authenticator is the part of the CMS backend the auth screens use.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
}

type Handler struct {
	backend    Authenticator
	cookieOpts session.CookieOptions
}

func NewHandler(
	authenticator Authenticator,
	cookieOpts session.CookieOptions,
) *Handler {
	return &Handler{
		backend:    authenticator,
		cookieOpts: cookieOpts,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST(session.SignInPath, h.SignIn)
	r.POST("/auth/forgot-password", h.ForgotPassword)
	r.POST("/auth/sign-out", h.SignOut)
	r.GET("/api/session", h.Session)
}

func (h *Handler) store(c *gin.Context, opts ...session.Option) *session.Store {
	opts = append([]session.Option{session.WithCookieOptions(h.cookieOpts)}, opts...)
	return session.NewStore(session.NewRequestJar(c.Writer, c.Request), opts...)
}

// backendStatus maps a backend failure to the status shown to the operator.
func backendStatus(err error) (int, string) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusInternalServerError {
			return http.StatusBadGateway, apiErr.Message
		}
		return apiErr.Status, apiErr.Message
	}
	return http.StatusBadGateway, "backend unavailable"
}
