package inmemdb

import (
	"context"

	"github.com/labasprak/asprak/core/system"
)

type systemRepository struct {
	db *DB
}

var _ system.Repository = (*systemRepository)(nil) // interface compliance check

func NewSystemRepository(db *DB) *systemRepository {
	return &systemRepository{db: db}
}

func (repo *systemRepository) Get(_ context.Context, key string) (system.Config, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.system[key]; ok {
		return c, nil
	}
	return system.Config{}, system.ErrNotFound
}

func (repo *systemRepository) Upsert(_ context.Context, c system.Config) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.system[c.Key] = c
	return nil
}
