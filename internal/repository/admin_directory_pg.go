package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminDirectory resolves the recipients of admin-facing notifications.
// The booking core never traverses user roles itself.
type AdminDirectory interface {
	ListAdminIDs(ctx context.Context) ([]int64, error)
}

type PGAdminDirectory struct {
	db *pgxpool.Pool
}

func NewAdminDirectory(db *pgxpool.Pool) AdminDirectory {
	return &PGAdminDirectory{db: db}
}

func (d *PGAdminDirectory) ListAdminIDs(ctx context.Context) ([]int64, error) {
	rows, err := d.db.Query(ctx, `SELECT id FROM users WHERE role='admin' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ AdminDirectory = (*PGAdminDirectory)(nil)
