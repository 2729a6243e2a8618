package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := "UPDATE tickets SET paid = ?, total = ? WHERE id = ? AND paid = ?"
	assert.Equal(t, q, Rebind(MySQL, q))
	assert.Equal(t, "UPDATE tickets SET paid = $1, total = $2 WHERE id = $3 AND paid = $4", Rebind(Postgres, q))
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "mysql", MySQL.DriverName())
	assert.Equal(t, "pgx", Postgres.DriverName())
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(driver.ErrBadConn))
	assert.True(t, IsUnavailable(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.False(t, IsUnavailable(errors.New("syntax error")))
	assert.False(t, IsUnavailable(nil))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, NullIfEmpty(""))
	assert.Equal(t, "hourly", NullIfEmpty("hourly"))
}
