// Package resources exposes the console's CRUD endpoints. Every call is
// forwarded to the CMS backend with the operator's bearer token; list
// responses are cached and mutations are audited.
package resources

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"admin-console/internal/audit"
	"admin-console/internal/backend"
	"admin-console/internal/cache"
	"admin-console/internal/logger"
	"admin-console/internal/middleware"
	"admin-console/internal/requestid"

	"github.com/gin-gonic/gin"
)

// Backend is the part of the CMS client used for resource pages.
type Backend interface {
	List(ctx context.Context, token, resource string, query url.Values) (*backend.Response, error)
	Get(ctx context.Context, token, resource, id string) (*backend.Response, error)
	Forward(ctx context.Context, token, method, resource, id, contentType string, body io.Reader) (*backend.Response, error)
}

type Handler struct {
	backend Backend
	cache   cache.ListCache
	audit   audit.Recorder
}

func NewHandler(b Backend, c cache.ListCache, a audit.Recorder) *Handler {
	if c == nil {
		c = cache.Noop{}
	}
	if a == nil {
		a = audit.Noop{}
	}
	return &Handler{backend: b, cache: c, audit: a}
}

// RegisterRoutes mounts the CRUD endpoints under r. The group must already
// require a session.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/:resource", h.list)
	r.GET("/:resource/:id", h.get)
	r.POST("/:resource", h.mutate)
	r.PUT("/:resource/:id", h.mutate)
	r.PATCH("/:resource/:id", h.mutate)
	r.DELETE("/:resource/:id", h.mutate)
}

func (h *Handler) resource(c *gin.Context) (string, bool) {
	name := c.Param("resource")
	if !backend.IsResource(name) {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown resource"})
		return "", false
	}
	return name, true
}

func (h *Handler) list(c *gin.Context) {
	resource, ok := h.resource(c)
	if !ok {
		return
	}
	sess, ok := middleware.SessionFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	query := c.Request.URL.Query()
	key := query.Encode()

	if data, hit, err := h.cache.Get(ctx, resource, sess.Token, key); err != nil {
		logger.Warn("list cache read failed", map[string]any{"resource": resource, "error": err.Error()})
	} else if hit {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	res, err := h.backend.List(ctx, sess.Token, resource, query)
	if err != nil {
		h.backendError(c, err)
		return
	}

	if err := h.cache.Set(ctx, resource, sess.Token, key, res.Body); err != nil {
		logger.Warn("list cache write failed", map[string]any{"resource": resource, "error": err.Error()})
	}

	c.Header("X-Cache", "MISS")
	c.Data(res.Status, contentType(res), res.Body)
}

func (h *Handler) get(c *gin.Context) {
	resource, ok := h.resource(c)
	if !ok {
		return
	}
	sess, ok := middleware.SessionFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	res, err := h.backend.Get(c.Request.Context(), sess.Token, resource, c.Param("id"))
	if err != nil {
		h.backendError(c, err)
		return
	}
	c.Data(res.Status, contentType(res), res.Body)
}

// mutate forwards create, update and delete calls. The request body is
// streamed as-is so multipart uploads keep their boundary.
func (h *Handler) mutate(c *gin.Context) {
	resource, ok := h.resource(c)
	if !ok {
		return
	}
	sess, ok := middleware.SessionFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	var body io.Reader
	if c.Request.Method != http.MethodDelete {
		body = c.Request.Body
	}

	res, err := h.backend.Forward(
		ctx,
		sess.Token,
		c.Request.Method,
		resource,
		id,
		c.GetHeader("Content-Type"),
		body,
	)
	if err != nil {
		h.backendError(c, err)
		return
	}

	if err := h.cache.Invalidate(ctx, resource); err != nil {
		logger.Warn("list cache invalidation failed", map[string]any{"resource": resource, "error": err.Error()})
	}

	if action, ok := audit.ActionFor(c.Request.Method); ok {
		entry := audit.Entry{
			RequestID:  requestid.FromContext(ctx),
			Actor:      sess.User.Email,
			Action:     action,
			Resource:   resource,
			ResourceID: id,
			Status:     res.Status,
		}
		if err := h.audit.Record(ctx, entry); err != nil {
			logger.Error("audit record failed", map[string]any{
				"resource": resource,
				"action":   action,
				"error":    err.Error(),
			})
		}
	}

	if res.Status == http.StatusNoContent || len(res.Body) == 0 {
		c.Status(res.Status)
		return
	}
	c.Data(res.Status, contentType(res), res.Body)
}

// backendError relays a backend failure. A backend 401 means the token is
// no longer accepted, so the local session is ended too.
func (h *Handler) backendError(c *gin.Context, err error) {
	if errors.Is(err, backend.ErrUnknownResource) {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown resource"})
		return
	}

	if backend.IsUnauthorized(err) {
		if store, ok := middleware.StoreFromContext(c.Request.Context()); ok {
			store.SignOut()
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": "session expired"})
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		c.JSON(apiErr.Status, gin.H{"message": apiErr.Message})
		return
	}

	logger.Error("backend call failed", map[string]any{
		"path":       c.Request.URL.Path,
		"error":      err.Error(),
		"request_id": requestid.FromContext(c.Request.Context()),
	})
	c.JSON(http.StatusBadGateway, gin.H{"message": "backend unavailable"})
}

func contentType(res *backend.Response) string {
	if res.ContentType != "" {
		return res.ContentType
	}
	return "application/json; charset=utf-8"
}
