package db

import (
	"context"
)

const auditMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS console_audit (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    request_id text NOT NULL DEFAULT '',
    actor_email text NOT NULL,
    action text NOT NULL,
    resource text NOT NULL,
    resource_id text NOT NULL DEFAULT '',
    status integer NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS console_audit_resource_idx
ON console_audit (resource, created_at DESC);

CREATE INDEX IF NOT EXISTS console_audit_actor_idx
ON console_audit (LOWER(actor_email));
`

// RunAuditMigration creates the console audit schema if it is missing.
func RunAuditMigration(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, auditMigration)
	return err
}
