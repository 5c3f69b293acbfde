package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/plotting"
)

type plottingRow struct {
	ID                   int    `db:"id"`
	AsprakID             string `db:"asprak_id"`
	AsprakKode           string `db:"asprak_kode"`
	AsprakNamaLengkap    string `db:"asprak_nama_lengkap"`
	AsprakNIM            string `db:"asprak_nim"`
	AsprakAngkatan       int    `db:"asprak_angkatan"`
	PraktikumID          string `db:"praktikum_id"`
	PraktikumNama        string `db:"praktikum_nama"`
	PraktikumTahunAjaran string `db:"praktikum_tahun_ajaran"`
}

func (r plottingRow) unbind() plotting.Item {
	return plotting.Item{
		ID: r.ID,
		Asprak: plotting.AsprakInfo{
			ID:          r.AsprakID,
			Kode:        r.AsprakKode,
			NamaLengkap: r.AsprakNamaLengkap,
			NIM:         r.AsprakNIM,
			Angkatan:    r.AsprakAngkatan,
		},
		Praktikum: plotting.PraktikumInfo{
			ID:          r.PraktikumID,
			Nama:        r.PraktikumNama,
			TahunAjaran: r.PraktikumTahunAjaran,
		},
	}
}

type plottingRepository struct {
	db *sqlx.DB
}

var _ plotting.Repository = (*plottingRepository)(nil) // interface compliance check

func NewPlottingRepository(db *sqlx.DB) *plottingRepository {
	return &plottingRepository{db: db}
}

const plottingFilter = `
	FROM asprak_praktikum ap
	JOIN asprak a ON a.id = ap.id_asprak
	JOIN praktikum p ON p.id = ap.id_praktikum
	WHERE ($1 = '' OR p.tahun_ajaran = $1) AND ($2 = '' OR p.id::text = $2)`

func (repo plottingRepository) Query(ctx context.Context, f plotting.ListFilter) ([]plotting.Item, int, error) {
	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) `+plottingFilter, f.Term, f.PraktikumID); err != nil {
		return nil, 0, errors.Wrap(err, "counting plotting")
	}

	var rows []plottingRow
	q := `
		SELECT ap.id,
			a.id AS asprak_id, a.kode AS asprak_kode, a.nama_lengkap AS asprak_nama_lengkap,
			a.nim AS asprak_nim, a.angkatan AS asprak_angkatan,
			p.id AS praktikum_id, p.nama AS praktikum_nama, p.tahun_ajaran AS praktikum_tahun_ajaran
		` + plottingFilter + `
		ORDER BY p.nama, a.kode, ap.id
		LIMIT $3 OFFSET $4`
	if err := repo.db.SelectContext(ctx, &rows, q, f.Term, f.PraktikumID, f.Page.Size, f.Page.Offset()); err != nil {
		return nil, 0, errors.Wrap(err, "selecting plotting")
	}
	items := make([]plotting.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.unbind())
	}
	return items, total, nil
}

func (repo plottingRepository) Link(ctx context.Context, asprakID, praktikumID string) (int, bool, error) {
	var id int
	q := `
		INSERT INTO asprak_praktikum (id_asprak, id_praktikum) VALUES ($1, $2)
		ON CONFLICT (id_asprak, id_praktikum) DO NOTHING
		RETURNING id`
	err := repo.db.GetContext(ctx, &id, q, asprakID, praktikumID)
	if err == nil {
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, errors.Wrap(err, "inserting plotting")
	}

	q = `SELECT id FROM asprak_praktikum WHERE id_asprak = $1 AND id_praktikum = $2`
	if err = repo.db.GetContext(ctx, &id, q, asprakID, praktikumID); err != nil {
		return 0, false, errors.Wrap(err, "selecting plotting")
	}
	return id, false, nil
}

func (repo plottingRepository) LinkMany(ctx context.Context, as []plotting.Assignment) (int, error) {
	inserted := 0
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := `
			INSERT INTO asprak_praktikum (id_asprak, id_praktikum) VALUES ($1, $2)
			ON CONFLICT (id_asprak, id_praktikum) DO NOTHING`
		for _, a := range as {
			res, err := tx.ExecContext(ctx, q, a.AsprakID, a.PraktikumID)
			if err != nil {
				return errors.Wrap(err, "inserting plotting")
			}
			n, err := rowsAffected(res, "inserting plotting")
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (repo plottingRepository) Delete(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM asprak_praktikum WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting plotting")
	}
	n, err := rowsAffected(res, "deleting plotting")
	if err != nil {
		return err
	}
	if n == 0 {
		return plotting.ErrNotFound
	}
	return nil
}
