package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "lib/pq unique", err: &pq.Error{Code: "23505"}, want: true},
		{name: "lib/pq other", err: &pq.Error{Code: "23503"}, want: false},
		{name: "pgx unique wrapped", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "pgx other", err: &pgconn.PgError{Code: "40001"}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestNullable(t *testing.T) {
	assert.False(t, nullable("").Valid)
	assert.Equal(t, "abc", nullable("abc").String)
	assert.True(t, nullable("abc").Valid)
}
