package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
)

const subscriberFields = `id, email, consent, source, confirmed, confirmation_token, unsubscribe_token,
	ip_address, user_agent, subscribed, confirmed_at, unsubscribed`

// InsertSubscriber saves a newsletter subscriber
func (db *DB) InsertSubscriber(ctx context.Context, s *persistence.Subscriber) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO subscribers(`+subscriberFields+`)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.Email, s.Consent, s.Source, s.Confirmed, utils.ToSQLStr(s.ConfirmationToken),
		utils.ToSQLStr(s.UnsubscribeToken), utils.ToSQLStr(s.IPAddress), utils.ToSQLStr(s.UserAgent),
		s.Subscribed, utils.ToSQLTime(s.ConfirmedAt), utils.ToSQLTime(s.Unsubscribed))
	if err != nil {
		return fmt.Errorf("can't insert subscriber: %w", mapInsertErr(err))
	}
	return nil
}

// ResubscribeSubscriber reactivates an unsubscribed row by ID with the new tokens and consent,
// returns nil if the row is absent or still active
func (db *DB) ResubscribeSubscriber(ctx context.Context, s *persistence.Subscriber) (*persistence.Subscriber, error) {
	return db.oneSubscriber(ctx, `UPDATE subscribers SET consent = $2, source = $3, confirmed = $4,
	confirmation_token = $5, unsubscribe_token = $6, ip_address = $7, user_agent = $8, subscribed = $9,
	confirmed_at = $10, unsubscribed = NULL
	WHERE id = $1 AND unsubscribed IS NOT NULL RETURNING `+subscriberFields,
		s.ID, s.Consent, s.Source, s.Confirmed, utils.ToSQLStr(s.ConfirmationToken),
		utils.ToSQLStr(s.UnsubscribeToken), utils.ToSQLStr(s.IPAddress), utils.ToSQLStr(s.UserAgent),
		s.Subscribed, utils.ToSQLTime(s.ConfirmedAt))
}

// LoadSubscriberByEmail returns nil if not found
func (db *DB) LoadSubscriberByEmail(ctx context.Context, email string) (*persistence.Subscriber, error) {
	return db.oneSubscriber(ctx, `SELECT `+subscriberFields+` FROM subscribers WHERE email = $1`, email)
}

// ConfirmSubscriber confirms subscription by token, returns nil if token is unknown
func (db *DB) ConfirmSubscriber(ctx context.Context, token string, now time.Time) (*persistence.Subscriber, error) {
	return db.oneSubscriber(ctx, `UPDATE subscribers SET confirmed = TRUE, confirmed_at = $2, confirmation_token = NULL
	WHERE confirmation_token = $1 RETURNING `+subscriberFields, token, now)
}

// Unsubscribe marks subscriber as unsubscribed by token, returns nil if token is unknown
func (db *DB) Unsubscribe(ctx context.Context, token string, now time.Time) (*persistence.Subscriber, error) {
	return db.oneSubscriber(ctx, `UPDATE subscribers SET unsubscribed = COALESCE(unsubscribed, $2)
	WHERE unsubscribe_token = $1 RETURNING `+subscriberFields, token, now)
}

// ListSubscribers returns a page of subscribers, newest first, and the total count
func (db *DB) ListSubscribers(ctx context.Context, page, limit int) ([]*persistence.Subscriber, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM subscribers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("can't count subscribers: %w", err)
	}
	l, o := pageParams(page, limit)
	rows, err := db.pool.Query(ctx, `SELECT `+subscriberFields+` FROM subscribers 
	ORDER BY subscribed DESC, id LIMIT $1 OFFSET $2`, l, o)
	if err != nil {
		return nil, 0, fmt.Errorf("can't select subscribers: %w", err)
	}
	res, err := pgx.CollectRows(rows, scanSubscriber)
	if err != nil {
		return nil, 0, fmt.Errorf("can't retrieve subscribers: %w", err)
	}
	return res, total, nil
}

// SubscriberStats returns subscription counters
func (db *DB) SubscriberStats(ctx context.Context) (*persistence.SubscriberStats, error) {
	var res persistence.SubscriberStats
	err := db.pool.QueryRow(ctx, `SELECT count(*),
	count(*) FILTER (WHERE confirmed AND unsubscribed IS NULL),
	count(*) FILTER (WHERE NOT confirmed AND unsubscribed IS NULL),
	count(*) FILTER (WHERE unsubscribed IS NOT NULL) FROM subscribers`).
		Scan(&res.Total, &res.Confirmed, &res.Pending, &res.Unsubscribed)
	if err != nil {
		return nil, fmt.Errorf("can't count subscribers: %w", err)
	}
	return &res, nil
}

func (db *DB) oneSubscriber(ctx context.Context, query string, args ...any) (*persistence.Subscriber, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("can't load subscriber: %w", err)
	}
	res, err := pgx.CollectOneRow(rows, scanSubscriber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load subscriber: %w", err)
	}
	return res, nil
}

func scanSubscriber(row pgx.CollectableRow) (*persistence.Subscriber, error) {
	var res persistence.Subscriber
	var ct, ut, ip, ua sql.NullString
	var ca, us sql.NullTime
	err := row.Scan(&res.ID, &res.Email, &res.Consent, &res.Source, &res.Confirmed, &ct, &ut, &ip, &ua,
		&res.Subscribed, &ca, &us)
	if err != nil {
		return nil, err
	}
	res.ConfirmationToken, res.UnsubscribeToken = utils.FromSQLStr(ct), utils.FromSQLStr(ut)
	res.IPAddress, res.UserAgent = utils.FromSQLStr(ip), utils.FromSQLStr(ua)
	res.ConfirmedAt, res.Unsubscribed = utils.FromSQLTime(ca), utils.FromSQLTime(us)
	return &res, nil
}
