package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewRoomRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewRoomRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewAdminDirectory(t *testing.T) {
	pool := &pgxpool.Pool{}
	dir := NewAdminDirectory(pool)
	assert.NotNil(t, dir)
}
