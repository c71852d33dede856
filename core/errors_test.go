package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "Nil", err: nil, expected: false},
		{name: "Store sentinel", err: fmt.Errorf("insert attendance: %w", ErrDuplicateKey), expected: true},
		{name: "Translated gorm error", err: gorm.ErrDuplicatedKey, expected: true},
		{name: "MySQL duplicate entry", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, expected: true},
		{name: "MySQL other error", err: &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, expected: false},
		{name: "Postgres unique violation", err: fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"}), expected: true},
		{name: "Postgres foreign key", err: &pgconn.PgError{Code: "23503"}, expected: false},
		{name: "Record not found", err: gorm.ErrRecordNotFound, expected: false},
		{name: "Plain error", err: errors.New("connection reset"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsUniqueViolation(tt.err))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelSilent, ParseLogLevel("silent"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("info"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
}
