package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/importer"
)

type datasetRepository struct {
	db *sqlx.DB
}

var _ importer.Repository = (*datasetRepository)(nil) // interface compliance check

func NewDatasetRepository(db *sqlx.DB) *datasetRepository {
	return &datasetRepository{db: db}
}

// Clear empties the domain tables, children first, in one transaction.
func (repo datasetRepository) Clear(ctx context.Context) error {
	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, table := range importer.ClearOrder {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return errors.Wrapf(err, "Failed to clear %s", table)
			}
		}
		return nil
	})
}
