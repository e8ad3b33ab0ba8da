// Package audit records which operator changed which CMS resource.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entry is one successful mutation made through the console.
type Entry struct {
	ID         uuid.UUID
	RequestID  string
	Actor      string
	Action     string
	Resource   string
	ResourceID string
	Status     int
	CreatedAt  time.Time
}

// ActionFor maps an HTTP method to an audit action.
func ActionFor(method string) (string, bool) {
	switch method {
	case http.MethodPost:
		return ActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate, true
	case http.MethodDelete:
		return ActionDelete, true
	}
	return "", false
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresRecorder writes entries to the console_audit table.
type PostgresRecorder struct {
	db  execer
	now func() time.Time
}

func NewPostgresRecorder(db execer) *PostgresRecorder {
	return &PostgresRecorder{db: db, now: time.Now}
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	if e.Actor == "" || e.Action == "" || e.Resource == "" {
		return fmt.Errorf("audit: incomplete entry")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO console_audit
			(id, request_id, actor_email, action, resource, resource_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		e.ID,
		e.RequestID,
		e.Actor,
		e.Action,
		e.Resource,
		e.ResourceID,
		e.Status,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// Noop is used when no database is configured.
type Noop struct{}

func (Noop) Record(context.Context, Entry) error { return nil }
