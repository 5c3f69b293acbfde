package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/labasprak/asprak/core/matakuliah"
	"github.com/labasprak/asprak/core/praktikum"
)

type mataKuliahRow struct {
	ID           int64       `db:"id"`
	IDPraktikum  string      `db:"id_praktikum"`
	NamaLengkap  string      `db:"nama_lengkap"`
	ProgramStudi string      `db:"program_studi"`
	DosenKoor    null.String `db:"dosen_koor"`
	Warna        null.String `db:"warna"`

	PraktikumNama        string `db:"praktikum_nama"`
	PraktikumTahunAjaran string `db:"praktikum_tahun_ajaran"`
}

func (r mataKuliahRow) unbind() matakuliah.MataKuliah {
	return matakuliah.MataKuliah{
		ID:           r.ID,
		IDPraktikum:  r.IDPraktikum,
		NamaLengkap:  r.NamaLengkap,
		ProgramStudi: r.ProgramStudi,
		DosenKoor:    r.DosenKoor.String,
		Warna:        r.Warna.String,
	}
}

const mataKuliahColumns = `mk.id, mk.id_praktikum, mk.nama_lengkap, mk.program_studi, mk.dosen_koor, mk.warna`

type mataKuliahRepository struct {
	db *sqlx.DB
}

var _ matakuliah.Repository = (*mataKuliahRepository)(nil) // interface compliance check

func NewMataKuliahRepository(db *sqlx.DB) *mataKuliahRepository {
	return &mataKuliahRepository{db: db}
}

func (repo mataKuliahRepository) QueryByTerm(ctx context.Context, term string) ([]matakuliah.WithPraktikum, error) {
	var rows []mataKuliahRow
	q := `
		SELECT ` + mataKuliahColumns + `, p.nama AS praktikum_nama, p.tahun_ajaran AS praktikum_tahun_ajaran
		FROM mata_kuliah mk
		JOIN praktikum p ON p.id = mk.id_praktikum
		WHERE $1 = '' OR p.tahun_ajaran = $1
		ORDER BY mk.nama_lengkap`
	if err := repo.db.SelectContext(ctx, &rows, q, term); err != nil {
		return nil, errors.Wrap(err, "selecting mata kuliah by term")
	}
	out := make([]matakuliah.WithPraktikum, 0, len(rows))
	for _, r := range rows {
		out = append(out, matakuliah.WithPraktikum{
			MataKuliah: r.unbind(),
			Praktikum:  praktikum.Praktikum{ID: r.IDPraktikum, Nama: r.PraktikumNama, TahunAjaran: r.PraktikumTahunAjaran},
		})
	}
	return out, nil
}

func (repo mataKuliahRepository) GetByID(ctx context.Context, id int64) (matakuliah.MataKuliah, error) {
	var r mataKuliahRow
	q := `SELECT ` + mataKuliahColumns + ` FROM mata_kuliah mk WHERE mk.id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return matakuliah.MataKuliah{}, trapNoRowsErr(err, matakuliah.ErrNotFound, "selecting mata kuliah")
	}
	return r.unbind(), nil
}

func (repo mataKuliahRepository) GetByPraktikumAndProdi(ctx context.Context, praktikumID, programStudi string) (matakuliah.MataKuliah, error) {
	if !validUUID(praktikumID) {
		return matakuliah.MataKuliah{}, matakuliah.ErrNotFound
	}
	var r mataKuliahRow
	q := `SELECT ` + mataKuliahColumns + ` FROM mata_kuliah mk WHERE mk.id_praktikum = $1 AND mk.program_studi = $2 ORDER BY mk.id LIMIT 1`
	if err := repo.db.GetContext(ctx, &r, q, praktikumID, programStudi); err != nil {
		return matakuliah.MataKuliah{}, trapNoRowsErr(err, matakuliah.ErrNotFound, "selecting mata kuliah")
	}
	return r.unbind(), nil
}

func (repo mataKuliahRepository) Create(ctx context.Context, mk matakuliah.MataKuliah) (matakuliah.MataKuliah, error) {
	q := `
		INSERT INTO mata_kuliah (id_praktikum, nama_lengkap, program_studi, dosen_koor, warna)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q,
		mk.IDPraktikum, mk.NamaLengkap, mk.ProgramStudi,
		null.NewString(mk.DosenKoor, mk.DosenKoor != ""), null.NewString(mk.Warna, mk.Warna != ""),
	).Scan(&mk.ID)
	if err != nil {
		return matakuliah.MataKuliah{}, errors.Wrap(err, "inserting mata kuliah")
	}
	return mk, nil
}

func (repo mataKuliahRepository) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := in(repo.db, `DELETE FROM mata_kuliah WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting mata kuliah")
	}
	return nil
}

func (repo mataKuliahRepository) Exists(ctx context.Context, praktikumID, programStudi string) (bool, error) {
	if !validUUID(praktikumID) {
		return false, nil
	}
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM mata_kuliah WHERE id_praktikum = $1 AND program_studi = $2)`
	if err := repo.db.GetContext(ctx, &exists, q, praktikumID, programStudi); err != nil {
		return false, errors.Wrap(err, "checking mata kuliah")
	}
	return exists, nil
}

func (repo mataKuliahRepository) UpdateColor(ctx context.Context, id int64, warna string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE mata_kuliah SET warna = $1 WHERE id = $2`, warna, id)
	if err != nil {
		return errors.Wrap(err, "updating colour")
	}
	n, err := rowsAffected(res, "updating colour")
	if err != nil {
		return err
	}
	if n == 0 {
		return matakuliah.ErrNotFound
	}
	return nil
}

func (repo mataKuliahRepository) UpdateColorByPraktikum(ctx context.Context, praktikumIDs []string, warna string) (int, error) {
	if praktikumIDs = uuids(praktikumIDs); len(praktikumIDs) == 0 {
		return 0, nil
	}
	q, args, err := in(repo.db, `UPDATE mata_kuliah SET warna = ? WHERE id_praktikum IN (?)`, warna, praktikumIDs)
	if err != nil {
		return 0, err
	}
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, errors.Wrap(err, "updating colours")
	}
	return rowsAffected(res, "updating colours")
}
