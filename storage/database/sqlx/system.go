package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/labasprak/asprak/core/system"
)

type systemRepository struct {
	db *sqlx.DB
}

var _ system.Repository = (*systemRepository)(nil) // interface compliance check

func NewSystemRepository(db *sqlx.DB) *systemRepository {
	return &systemRepository{db: db}
}

func (repo systemRepository) Get(ctx context.Context, key string) (system.Config, error) {
	var r struct {
		Key       string      `db:"key"`
		ValueBool bool        `db:"value_bool"`
		UpdatedAt time.Time   `db:"updated_at"`
		UpdatedBy null.String `db:"updated_by"`
	}
	q := `SELECT key, value_bool, updated_at, updated_by FROM system_config WHERE key = $1`
	if err := repo.db.GetContext(ctx, &r, q, key); err != nil {
		return system.Config{}, trapNoRowsErr(err, system.ErrNotFound, "selecting system config")
	}
	return system.Config{Key: r.Key, ValueBool: r.ValueBool, UpdatedAt: r.UpdatedAt.UTC(), UpdatedBy: r.UpdatedBy.String}, nil
}

func (repo systemRepository) Upsert(ctx context.Context, c system.Config) error {
	q := `
		INSERT INTO system_config (key, value_bool, updated_at, updated_by) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value_bool = EXCLUDED.value_bool, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by`
	_, err := repo.db.ExecContext(ctx, q, c.Key, c.ValueBool, c.UpdatedAt.UTC(), null.NewString(c.UpdatedBy, validUUID(c.UpdatedBy)))
	if err != nil {
		return errors.Wrap(err, "upserting system config")
	}
	return nil
}
