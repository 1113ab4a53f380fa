package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxDB adapts a pgxpool.Pool to the DB interface.
type pgxDB struct {
	*pgxpool.Pool
}

// NewPgxDB wraps a pgx pool as a DB.
func NewPgxDB(pool *pgxpool.Pool) DB {
	return pgxDB{Pool: pool}
}

func (db pgxDB) Begin(ctx context.Context) (Tx, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}
