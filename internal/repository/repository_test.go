package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Repos are built through their constructors; the struct fields stay
// unexported.
func TestRepoConstructors(t *testing.T) {
	var db *sql.DB

	assert.NotNil(t, NewUserRepo(db))
	assert.NotNil(t, NewTokenRepo(db))
	assert.NotNil(t, NewConcertRepo(db))
	assert.NotNil(t, NewReservationRepo(db))
}
