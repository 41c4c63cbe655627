package utils

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToSQLStr(t *testing.T) {
	tests := []struct {
		name string
		args string
		want sql.NullString
	}{
		{name: "empty", args: "", want: sql.NullString{}},
		{name: "non empty", args: "olia", want: sql.NullString{String: "olia", Valid: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToSQLStr(tt.args); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToSQLStr() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromSQLStr(t *testing.T) {
	tests := []struct {
		name string
		args sql.NullString
		want string
	}{
		{name: "empty", args: sql.NullString{}, want: ""},
		{name: "non empty", args: sql.NullString{String: "olia", Valid: true}, want: "olia"},
		{name: "non valid", args: sql.NullString{String: "olia", Valid: false}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromSQLStr(tt.args); got != tt.want {
				t.Errorf("FromSQLStr() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSQLTime(t *testing.T) {
	now := time.Now()
	assert.Equal(t, sql.NullTime{}, ToSQLTime(nil))
	assert.Equal(t, sql.NullTime{Time: now, Valid: true}, ToSQLTime(&now))
	assert.Nil(t, FromSQLTime(sql.NullTime{Time: now}))
	assert.Equal(t, &now, FromSQLTime(sql.NullTime{Time: now, Valid: true}))
}

func TestSQLInt32(t *testing.T) {
	assert.Equal(t, sql.NullInt32{}, ToSQLInt32(0))
	assert.Equal(t, sql.NullInt32{Int32: 10, Valid: true}, ToSQLInt32(10))
	assert.Equal(t, 0, FromSQLInt32OrZero(sql.NullInt32{Int32: 10}))
	assert.Equal(t, 10, FromSQLInt32OrZero(sql.NullInt32{Int32: 10, Valid: true}))
}
