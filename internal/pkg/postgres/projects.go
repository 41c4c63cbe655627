package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
)

const projectFields = `id, user_id, title, description, service_type, word_count, deadline, budget, status, created`

// InsertProject saves project request
func (db *DB) InsertProject(ctx context.Context, p *persistence.Project) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO projects(`+projectFields+`) VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.UserID, p.Title, p.Description, p.ServiceType, utils.ToSQLInt32(p.WordCount),
		utils.ToSQLTime(p.Deadline), utils.ToSQLStr(p.Budget), p.Status, p.Created)
	if err != nil {
		return fmt.Errorf("can't insert project: %w", mapInsertErr(err))
	}
	return nil
}

// ListProjects returns user's projects, newest first
func (db *DB) ListProjects(ctx context.Context, userID string) ([]*persistence.Project, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+projectFields+` FROM projects WHERE user_id = $1 ORDER BY created DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("can't select projects: %w", err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*persistence.Project, error) {
		var res persistence.Project
		var wc sql.NullInt32
		var dl sql.NullTime
		var budget sql.NullString
		if err := row.Scan(&res.ID, &res.UserID, &res.Title, &res.Description, &res.ServiceType, &wc, &dl,
			&budget, &res.Status, &res.Created); err != nil {
			return nil, err
		}
		res.WordCount, res.Deadline, res.Budget = utils.FromSQLInt32OrZero(wc), utils.FromSQLTime(dl), utils.FromSQLStr(budget)
		return &res, nil
	})
	if err != nil {
		return nil, fmt.Errorf("can't retrieve projects: %w", err)
	}
	return res, nil
}
