package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/stats"
)

type statsRepository struct {
	db *sqlx.DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *sqlx.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo statsRepository) count(ctx context.Context, q, term string) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, q, term); err != nil {
		return 0, err
	}
	return n, nil
}

func (repo statsRepository) CountPlotting(ctx context.Context, term string) (int, error) {
	n, err := repo.count(ctx, `
		SELECT COUNT(*) FROM asprak_praktikum ap
		JOIN praktikum p ON p.id = ap.id_praktikum
		WHERE p.tahun_ajaran = $1`, term)
	return n, errors.Wrap(err, "counting plotting")
}

func (repo statsRepository) CountJadwal(ctx context.Context, term string) (int, error) {
	n, err := repo.count(ctx, `
		SELECT COUNT(*) FROM jadwal j
		JOIN mata_kuliah mk ON mk.id = j.id_mk
		JOIN praktikum p ON p.id = mk.id_praktikum
		WHERE p.tahun_ajaran = $1`, term)
	return n, errors.Wrap(err, "counting jadwal")
}

func (repo statsRepository) CountPelanggaran(ctx context.Context, term string) (int, error) {
	n, err := repo.count(ctx, `
		SELECT COUNT(*) FROM pelanggaran pl
		JOIN jadwal j ON j.id = pl.id_jadwal
		JOIN mata_kuliah mk ON mk.id = j.id_mk
		JOIN praktikum p ON p.id = mk.id_praktikum
		WHERE p.tahun_ajaran = $1`, term)
	return n, errors.Wrap(err, "counting pelanggaran")
}

func (repo statsRepository) AngkatanCounts(ctx context.Context) (map[int]int, error) {
	var rows []struct {
		Angkatan int `db:"angkatan"`
		Count    int `db:"count"`
	}
	q := `SELECT COALESCE(angkatan, 0) AS angkatan, COUNT(*) AS count FROM asprak GROUP BY 1`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "counting asprak by angkatan")
	}
	counts := make(map[int]int, len(rows))
	for _, r := range rows {
		counts[r.Angkatan] += r.Count
	}
	return counts, nil
}

func (repo statsRepository) DayCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Hari  string `db:"hari"`
		Count int    `db:"count"`
	}
	q := `SELECT COALESCE(hari, '') AS hari, COUNT(*) AS count FROM jadwal GROUP BY 1`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "counting jadwal by day")
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Hari] += r.Count
	}
	return counts, nil
}
