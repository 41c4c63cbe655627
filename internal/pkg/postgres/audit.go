package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
)

// InsertAudit saves audit event
func (db *DB) InsertAudit(ctx context.Context, e *persistence.AuditEvent) error {
	var details any
	if len(e.Details) > 0 {
		details = []byte(e.Details)
	}
	_, err := db.pool.Exec(ctx, `INSERT INTO audit_events(id, event_type, user_id, resource, action, details, ip_address, created)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8)`, e.ID, e.EventType, utils.ToSQLStr(e.UserID), utils.ToSQLStr(e.Resource),
		utils.ToSQLStr(e.Action), details, utils.ToSQLStr(e.IPAddress), e.Created)
	if err != nil {
		return fmt.Errorf("can't insert audit event: %w", err)
	}
	return nil
}

// ListAudit returns filtered events, newest first
func (db *DB) ListAudit(ctx context.Context, f persistence.AuditFilter) ([]*persistence.AuditEvent, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.EventType != "" {
		add("event_type = $%d", f.EventType)
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if !f.From.IsZero() {
		add("created >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("created < $%d", f.To)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	limit, _ := pageParams(1, f.Limit)
	args = append(args, limit)
	rows, err := db.pool.Query(ctx, `SELECT id, event_type, user_id, resource, action, details, ip_address, created
	FROM audit_events`+where+fmt.Sprintf(` ORDER BY created DESC, id LIMIT $%d`, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("can't select audit events: %w", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*persistence.AuditEvent, error) {
		var res persistence.AuditEvent
		var uid, resource, action, ip sql.NullString
		var details []byte
		if err := row.Scan(&res.ID, &res.EventType, &uid, &resource, &action, &details, &ip, &res.Created); err != nil {
			return nil, err
		}
		res.UserID, res.Resource, res.Action = utils.FromSQLStr(uid), utils.FromSQLStr(resource), utils.FromSQLStr(action)
		res.IPAddress, res.Details = utils.FromSQLStr(ip), details
		return &res, nil
	})
	if err != nil {
		return nil, fmt.Errorf("can't retrieve audit events: %w", err)
	}
	return res, nil
}

// DeleteAuditOlder drops events created before t
func (db *DB) DeleteAuditOlder(ctx context.Context, t time.Time) (int64, error) {
	cmd, err := db.pool.Exec(ctx, `DELETE FROM audit_events WHERE created < $1`, t)
	if err != nil {
		return 0, fmt.Errorf("can't delete audit events: %w", err)
	}
	goapp.Log.Info().Time("older than", t).Int64("rows", cmd.RowsAffected()).Msg("deleted audit events")
	return cmd.RowsAffected(), nil
}
