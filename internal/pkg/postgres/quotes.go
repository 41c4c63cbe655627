package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
)

// InsertQuote saves the calculated quote
func (db *DB) InsertQuote(ctx context.Context, q *persistence.Quote) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO quotes(id, word_count, source_language, target_language,
	document_type, complexity, tier, base_rate, language_multiplier, complexity_multiplier, type_multiplier,
	total_price, currency, turnaround_days, name, email, company, requirements, status, created, valid_until)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		q.ID, q.WordCount, q.SourceLanguage, q.TargetLanguage,
		q.DocumentType, q.Complexity, q.Tier, q.BaseRate, q.LanguageMult, q.ComplexityMult, q.TypeMult,
		q.TotalPrice, q.Currency, q.TurnaroundDays, q.Name, q.Email, utils.ToSQLStr(q.Company),
		utils.ToSQLStr(q.Requirements), q.Status, q.Created, q.ValidUntil)
	if err != nil {
		return fmt.Errorf("can't insert quote: %w", mapInsertErr(err))
	}
	return nil
}

// LoadQuote loads quote, returns nil if not found
func (db *DB) LoadQuote(ctx context.Context, id string) (*persistence.Quote, error) {
	var res persistence.Quote
	var company, req sql.NullString
	err := db.pool.QueryRow(ctx, `SELECT id, word_count, source_language, target_language,
	document_type, complexity, tier, base_rate::float8, language_multiplier::float8, complexity_multiplier::float8,
	type_multiplier::float8, total_price, currency, turnaround_days, name, email, company, requirements, status,
	created, valid_until FROM quotes WHERE id = $1`, id).Scan(&res.ID, &res.WordCount, &res.SourceLanguage,
		&res.TargetLanguage, &res.DocumentType, &res.Complexity, &res.Tier, &res.BaseRate, &res.LanguageMult,
		&res.ComplexityMult, &res.TypeMult, &res.TotalPrice, &res.Currency, &res.TurnaroundDays, &res.Name,
		&res.Email, &company, &req, &res.Status, &res.Created, &res.ValidUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load quote: %w", err)
	}
	res.Company = utils.FromSQLStr(company)
	res.Requirements = utils.FromSQLStr(req)
	return &res, nil
}
