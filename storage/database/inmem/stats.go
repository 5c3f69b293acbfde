package inmemdb

import (
	"context"

	"github.com/labasprak/asprak/core/stats"
)

type statsRepository struct {
	db *DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) CountPlotting(_ context.Context, term string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	n := 0
	for _, l := range repo.db.links {
		if repo.db.praktikum[l.praktikumID].TahunAjaran == term {
			n++
		}
	}
	return n, nil
}

func (repo *statsRepository) CountJadwal(_ context.Context, term string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	n := 0
	for id := range repo.db.jadwal {
		if _, p := repo.db.praktikumOfJadwal(id); p.TahunAjaran == term {
			n++
		}
	}
	return n, nil
}

func (repo *statsRepository) CountPelanggaran(_ context.Context, term string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	n := 0
	for _, pl := range repo.db.pelanggaran {
		if _, p := repo.db.praktikumOfJadwal(pl.IDJadwal); p.TahunAjaran == term {
			n++
		}
	}
	return n, nil
}

func (repo *statsRepository) AngkatanCounts(_ context.Context) (map[int]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[int]int)
	for _, a := range repo.db.asprak {
		counts[a.Angkatan]++
	}
	return counts, nil
}

func (repo *statsRepository) DayCounts(_ context.Context) (map[string]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, j := range repo.db.jadwal {
		counts[j.Hari]++
	}
	return counts, nil
}
