package utils

import (
	"database/sql"
	"time"
)

// ToSQLStr creates new sql str instance
func ToSQLStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// FromSQLStr returns string from sql.NullString
func FromSQLStr(sqlStr sql.NullString) string {
	if sqlStr.Valid {
		return sqlStr.String
	}
	return ""
}

// ToSQLTime creates new sql time instance, nil is NULL
func ToSQLTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// FromSQLTime returns time pointer from sql.NullTime
func FromSQLTime(sqlTime sql.NullTime) *time.Time {
	if sqlTime.Valid {
		res := sqlTime.Time
		return &res
	}
	return nil
}

// ToSQLInt32 creates new sql int instance, 0 is NULL
func ToSQLInt32(i int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(i), Valid: i != 0}
}

// FromSQLInt32OrZero returns int from sql.NullInt32
func FromSQLInt32OrZero(sqlData sql.NullInt32) int {
	if sqlData.Valid {
		return int(sqlData.Int32)
	}
	return 0
}
