package inmemdb

import (
	"context"

	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/importer"
	"github.com/labasprak/asprak/core/jadwal"
	"github.com/labasprak/asprak/core/matakuliah"
	"github.com/labasprak/asprak/core/pelanggaran"
	"github.com/labasprak/asprak/core/praktikum"
)

type datasetRepository struct {
	db *DB
}

var _ importer.Repository = (*datasetRepository)(nil) // interface compliance check

func NewDatasetRepository(db *DB) *datasetRepository {
	return &datasetRepository{db: db}
}

// Clear empties the domain tables. Pengguna, audit log and system config survive.
func (repo *datasetRepository) Clear(_ context.Context) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pelanggaran = make(map[int64]pelanggaran.Pelanggaran)
	repo.db.pengganti = make(map[string]jadwal.Pengganti)
	repo.db.links = make(map[int]link)
	repo.db.jadwal = make(map[int64]jadwal.Jadwal)
	repo.db.mataKuliah = make(map[int64]matakuliah.MataKuliah)
	repo.db.asprak = make(map[string]asprak.Asprak)
	repo.db.praktikum = make(map[string]praktikum.Praktikum)
	repo.db.koordinator = nil
	return nil
}
