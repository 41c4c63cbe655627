package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
)

const leadFields = `id, name, email, company, phone, project_type, message, budget, timeline, status, priority,
	source, notes, assigned_to, ip_address, user_agent, created, updated`

// InsertLead saves a contact inquiry
func (db *DB) InsertLead(ctx context.Context, l *persistence.Lead) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO leads(`+leadFields+`)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		l.ID, l.Name, l.Email, utils.ToSQLStr(l.Company), utils.ToSQLStr(l.Phone), utils.ToSQLStr(l.ProjectType),
		l.Message, utils.ToSQLStr(l.Budget), utils.ToSQLStr(l.Timeline), l.Status, l.Priority,
		utils.ToSQLStr(l.Source), utils.ToSQLStr(l.Notes), utils.ToSQLStr(l.AssignedTo),
		utils.ToSQLStr(l.IPAddress), utils.ToSQLStr(l.UserAgent), l.Created, l.Updated)
	if err != nil {
		return fmt.Errorf("can't insert lead: %w", mapInsertErr(err))
	}
	return nil
}

// ListLeads returns filtered leads page, newest first, and the total count
func (db *DB) ListLeads(ctx context.Context, f persistence.LeadFilter) ([]*persistence.Lead, int, error) {
	where, args := leadWhere(f)
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count leads: %w", err)
	}
	limit, offset := pageParams(f.Page, f.Limit)
	args = append(args, limit, offset)
	rows, err := db.pool.Query(ctx, `SELECT `+leadFields+` FROM leads`+where+
		fmt.Sprintf(` ORDER BY created DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("can't select leads: %w", err)
	}
	res, err := pgx.CollectRows(rows, scanLead)
	if err != nil {
		return nil, 0, fmt.Errorf("can't retrieve leads: %w", err)
	}
	return res, total, nil
}

// LoadLead loads lead, returns nil if not found
func (db *DB) LoadLead(ctx context.Context, id string) (*persistence.Lead, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+leadFields+` FROM leads WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("can't load lead: %w", err)
	}
	res, err := pgx.CollectOneRow(rows, scanLead)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load lead: %w", err)
	}
	return res, nil
}

// UpdateLead changes provided fields, returns nil if lead is not found
func (db *DB) UpdateLead(ctx context.Context, id string, u *persistence.LeadUpdate, now time.Time) (*persistence.Lead, error) {
	sets := []string{"updated = $2"}
	args := []any{id, now}
	add := func(col string, v *string) {
		if v != nil {
			args = append(args, utils.ToSQLStr(*v))
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("status", u.Status)
	add("priority", u.Priority)
	add("notes", u.Notes)
	add("assigned_to", u.AssignedTo)
	rows, err := db.pool.Query(ctx, `UPDATE leads SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+leadFields, args...)
	if err != nil {
		return nil, fmt.Errorf("can't update lead: %w", err)
	}
	res, err := pgx.CollectOneRow(rows, scanLead)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't update lead: %w", err)
	}
	return res, nil
}

func leadWhere(f persistence.LeadFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func pageParams(page, limit int) (int, int) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

func scanLead(row pgx.CollectableRow) (*persistence.Lead, error) {
	var res persistence.Lead
	var company, phone, pt, budget, timeline, source, notes, assigned, ip, ua sql.NullString
	err := row.Scan(&res.ID, &res.Name, &res.Email, &company, &phone, &pt, &res.Message, &budget, &timeline,
		&res.Status, &res.Priority, &source, &notes, &assigned, &ip, &ua, &res.Created, &res.Updated)
	if err != nil {
		return nil, err
	}
	res.Company, res.Phone, res.ProjectType = utils.FromSQLStr(company), utils.FromSQLStr(phone), utils.FromSQLStr(pt)
	res.Budget, res.Timeline, res.Source = utils.FromSQLStr(budget), utils.FromSQLStr(timeline), utils.FromSQLStr(source)
	res.Notes, res.AssignedTo = utils.FromSQLStr(notes), utils.FromSQLStr(assigned)
	res.IPAddress, res.UserAgent = utils.FromSQLStr(ip), utils.FromSQLStr(ua)
	return &res, nil
}
