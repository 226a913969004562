package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithUTC(t *testing.T) {
	assert.Equal(t,
		"postgres://u:p@localhost:5432/pos?sslmode=disable&timezone=UTC",
		withUTC("postgres://u:p@localhost:5432/pos?sslmode=disable"))
	assert.Equal(t,
		"host=db user=u dbname=pos TimeZone=UTC",
		withUTC("host=db user=u dbname=pos"))
	assert.Equal(t,
		"host=db TimeZone=UTC",
		withUTC("host=db TimeZone=UTC"))
}
