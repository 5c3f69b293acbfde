package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/labasprak/asprak/core/pelanggaran"
)

type pelanggaranRow struct {
	ID          int64       `db:"id"`
	IDAsprak    string      `db:"id_asprak"`
	IDJadwal    int64       `db:"id_jadwal"`
	Modul       null.String `db:"modul"`
	Jenis       string      `db:"jenis"`
	Keterangan  null.String `db:"keterangan"`
	IsFinal     bool        `db:"is_final"`
	FinalizedAt null.Time   `db:"finalized_at"`
	CreatedAt   time.Time   `db:"created_at"`

	AsprakNamaLengkap string `db:"asprak_nama_lengkap"`
	AsprakNIM         string `db:"asprak_nim"`
	AsprakKode        string `db:"asprak_kode"`
	JadwalHari        string `db:"jadwal_hari"`
	JadwalJam         string `db:"jadwal_jam"`
	JadwalKelas       string `db:"jadwal_kelas"`
	MKID              int64  `db:"mk_id"`
	MKIDPraktikum     string `db:"mk_id_praktikum"`
	MKNamaLengkap     string `db:"mk_nama_lengkap"`
	MKProgramStudi    string `db:"mk_program_studi"`
}

func (r pelanggaranRow) unbind() pelanggaran.Pelanggaran {
	p := pelanggaran.Pelanggaran{
		ID:         r.ID,
		IDAsprak:   r.IDAsprak,
		IDJadwal:   r.IDJadwal,
		Modul:      r.Modul.String,
		Jenis:      r.Jenis,
		Keterangan: r.Keterangan.String,
		IsFinal:    r.IsFinal,
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if r.FinalizedAt.Valid {
		at := r.FinalizedAt.Time.UTC()
		p.FinalizedAt = &at
	}
	return p
}

func (r pelanggaranRow) unbindDetail() pelanggaran.Detail {
	return pelanggaran.Detail{
		Pelanggaran: r.unbind(),
		Asprak:      pelanggaran.AsprakInfo{NamaLengkap: r.AsprakNamaLengkap, NIM: r.AsprakNIM, Kode: r.AsprakKode},
		Jadwal: pelanggaran.JadwalInfo{
			Hari:  r.JadwalHari,
			Jam:   r.JadwalJam,
			Kelas: r.JadwalKelas,
			MataKuliah: pelanggaran.MataKuliahInfo{
				ID:           r.MKID,
				IDPraktikum:  r.MKIDPraktikum,
				NamaLengkap:  r.MKNamaLengkap,
				ProgramStudi: r.MKProgramStudi,
			},
		},
	}
}

const pelanggaranColumns = `pl.id, pl.id_asprak, pl.id_jadwal, pl.modul, pl.jenis, pl.keterangan, pl.is_final, pl.finalized_at, pl.created_at`

type pelanggaranRepository struct {
	db *sqlx.DB
}

var _ pelanggaran.Repository = (*pelanggaranRepository)(nil) // interface compliance check

func NewPelanggaranRepository(db *sqlx.DB) *pelanggaranRepository {
	return &pelanggaranRepository{db: db}
}

func (repo pelanggaranRepository) Query(ctx context.Context, f pelanggaran.Filter) ([]pelanggaran.Detail, error) {
	if f.PraktikumIDs != nil {
		if f.PraktikumIDs = uuids(f.PraktikumIDs); len(f.PraktikumIDs) == 0 {
			return []pelanggaran.Detail{}, nil
		}
	}

	q := `
		SELECT ` + pelanggaranColumns + `,
			a.nama_lengkap AS asprak_nama_lengkap, a.nim AS asprak_nim, a.kode AS asprak_kode,
			j.hari AS jadwal_hari, j.jam AS jadwal_jam, j.kelas AS jadwal_kelas,
			mk.id AS mk_id, mk.id_praktikum AS mk_id_praktikum,
			mk.nama_lengkap AS mk_nama_lengkap, mk.program_studi AS mk_program_studi
		FROM pelanggaran pl
		JOIN asprak a ON a.id = pl.id_asprak
		JOIN jadwal j ON j.id = pl.id_jadwal
		JOIN mata_kuliah mk ON mk.id = j.id_mk
		WHERE (? = 0 OR mk.id = ?)`
	args := []interface{}{f.IDMK, f.IDMK}
	if f.PraktikumIDs != nil {
		q += ` AND mk.id_praktikum IN (?)`
		args = append(args, f.PraktikumIDs)
	}
	q += ` ORDER BY pl.created_at DESC, pl.id DESC`

	q, args, err := in(repo.db, q, args...)
	if err != nil {
		return nil, err
	}
	var rows []pelanggaranRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting pelanggaran")
	}
	out := make([]pelanggaran.Detail, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.unbindDetail())
	}
	return out, nil
}

func (repo pelanggaranRepository) GetByID(ctx context.Context, id int64) (pelanggaran.Pelanggaran, error) {
	var r pelanggaranRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+pelanggaranColumns+` FROM pelanggaran pl WHERE pl.id = $1`, id); err != nil {
		return pelanggaran.Pelanggaran{}, trapNoRowsErr(err, pelanggaran.ErrNotFound, "selecting pelanggaran")
	}
	return r.unbind(), nil
}

func (repo pelanggaranRepository) Create(ctx context.Context, p pelanggaran.Pelanggaran) (pelanggaran.Pelanggaran, error) {
	q := `
		INSERT INTO pelanggaran (id_asprak, id_jadwal, modul, jenis, keterangan, is_final, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q,
		p.IDAsprak, p.IDJadwal, null.NewString(p.Modul, p.Modul != ""), p.Jenis,
		null.NewString(p.Keterangan, p.Keterangan != ""), p.IsFinal, p.CreatedAt.UTC(),
	).Scan(&p.ID)
	if err != nil {
		return pelanggaran.Pelanggaran{}, errors.Wrap(err, "inserting pelanggaran")
	}
	return p, nil
}

func (repo pelanggaranRepository) FinalizeByMataKuliah(ctx context.Context, idMK int64, at time.Time) (int, error) {
	q := `
		UPDATE pelanggaran SET is_final = TRUE, finalized_at = $1
		WHERE NOT is_final AND id_jadwal IN (SELECT id FROM jadwal WHERE id_mk = $2)`
	res, err := repo.db.ExecContext(ctx, q, at.UTC(), idMK)
	if err != nil {
		return 0, errors.Wrap(err, "finalizing pelanggaran")
	}
	return rowsAffected(res, "finalizing pelanggaran")
}

func (repo pelanggaranRepository) Delete(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM pelanggaran WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting pelanggaran")
	}
	n, err := rowsAffected(res, "deleting pelanggaran")
	if err != nil {
		return err
	}
	if n == 0 {
		return pelanggaran.ErrNotFound
	}
	return nil
}

func (repo pelanggaranRepository) QueryExport(ctx context.Context, idPraktikum, tahunAjaran string) ([]pelanggaran.ExportRow, error) {
	var rows []struct {
		IDPraktikum string `db:"id_praktikum"`
		MK          string `db:"mk"`
		Kode        string `db:"kode"`
		Modul       string `db:"modul"`
		Kelas       string `db:"kelas"`
		Jenis       string `db:"jenis"`
	}
	q := `
		SELECT p.id AS id_praktikum, mk.nama_lengkap AS mk, a.kode, COALESCE(pl.modul, '') AS modul, j.kelas, pl.jenis
		FROM pelanggaran pl
		JOIN asprak a ON a.id = pl.id_asprak
		JOIN jadwal j ON j.id = pl.id_jadwal
		JOIN mata_kuliah mk ON mk.id = j.id_mk
		JOIN praktikum p ON p.id = mk.id_praktikum
		WHERE ($1 = '' OR p.id::text = $1) AND ($2 = '' OR p.tahun_ajaran = $2)
		ORDER BY mk.nama_lengkap, j.kelas, a.kode, pl.created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, idPraktikum, tahunAjaran); err != nil {
		return nil, errors.Wrap(err, "selecting pelanggaran export")
	}
	out := make([]pelanggaran.ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, pelanggaran.ExportRow{
			IDPraktikum: r.IDPraktikum,
			MK:          r.MK,
			Kode:        r.Kode,
			Modul:       r.Modul,
			Kelas:       r.Kelas,
			Jenis:       r.Jenis,
		})
	}
	return out, nil
}
