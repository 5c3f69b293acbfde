package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/labasprak/asprak/core/jadwal"
)

type jadwalRow struct {
	ID          int64       `db:"id"`
	IDMK        int64       `db:"id_mk"`
	Kelas       string      `db:"kelas"`
	Hari        string      `db:"hari"`
	Sesi        int         `db:"sesi"`
	Jam         string      `db:"jam"`
	Ruangan     null.String `db:"ruangan"`
	TotalAsprak int         `db:"total_asprak"`
	Dosen       null.String `db:"dosen"`

	MKNamaLengkap        string `db:"mk_nama_lengkap"`
	MKProgramStudi       string `db:"mk_program_studi"`
	PraktikumNama        string `db:"praktikum_nama"`
	PraktikumTahunAjaran string `db:"praktikum_tahun_ajaran"`
}

func (r jadwalRow) unbind() jadwal.Jadwal {
	return jadwal.Jadwal{
		ID:          r.ID,
		IDMK:        r.IDMK,
		Kelas:       r.Kelas,
		Hari:        r.Hari,
		Sesi:        r.Sesi,
		Jam:         r.Jam,
		Ruangan:     r.Ruangan.String,
		TotalAsprak: r.TotalAsprak,
		Dosen:       r.Dosen.String,
	}
}

func (r jadwalRow) unbindWithMataKuliah() jadwal.WithMataKuliah {
	return jadwal.WithMataKuliah{
		Jadwal: r.unbind(),
		MataKuliah: jadwal.MKInfo{
			NamaLengkap:  r.MKNamaLengkap,
			ProgramStudi: r.MKProgramStudi,
			Praktikum:    jadwal.MKPraktikum{Nama: r.PraktikumNama, TahunAjaran: r.PraktikumTahunAjaran},
		},
	}
}

func bindJadwal(j jadwal.Jadwal) jadwalRow {
	return jadwalRow{
		ID:          j.ID,
		IDMK:        j.IDMK,
		Kelas:       j.Kelas,
		Hari:        j.Hari,
		Sesi:        j.Sesi,
		Jam:         j.Jam,
		Ruangan:     null.NewString(j.Ruangan, j.Ruangan != ""),
		TotalAsprak: j.TotalAsprak,
		Dosen:       null.NewString(j.Dosen, j.Dosen != ""),
	}
}

const (
	jadwalColumns = `j.id, j.id_mk, j.kelas, j.hari, j.sesi, j.jam, j.ruangan, j.total_asprak, j.dosen`

	jadwalJoinedSelect = `
		SELECT ` + jadwalColumns + `,
			mk.nama_lengkap AS mk_nama_lengkap, mk.program_studi AS mk_program_studi,
			p.nama AS praktikum_nama, p.tahun_ajaran AS praktikum_tahun_ajaran
		FROM jadwal j
		JOIN mata_kuliah mk ON mk.id = j.id_mk
		JOIN praktikum p ON p.id = mk.id_praktikum`

	jadwalInsert = `
		INSERT INTO jadwal (id_mk, kelas, hari, sesi, jam, ruangan, total_asprak, dosen)
		VALUES (:id_mk, :kelas, :hari, :sesi, :jam, :ruangan, :total_asprak, :dosen)
		RETURNING id`
)

type penggantiRow struct {
	ID        string      `db:"id"`
	IDJadwal  int64       `db:"id_jadwal"`
	Modul     int         `db:"modul"`
	Tanggal   string      `db:"tanggal"`
	Hari      null.String `db:"hari"`
	Sesi      null.Int    `db:"sesi"`
	Jam       null.String `db:"jam"`
	Ruangan   null.String `db:"ruangan"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r penggantiRow) unbind() jadwal.Pengganti {
	return jadwal.Pengganti{
		ID:        r.ID,
		IDJadwal:  r.IDJadwal,
		Modul:     r.Modul,
		Tanggal:   r.Tanggal,
		Hari:      r.Hari.String,
		Sesi:      r.Sesi.Int,
		Jam:       r.Jam.String,
		Ruangan:   r.Ruangan.String,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

const penggantiColumns = `id, id_jadwal, modul, to_char(tanggal, 'YYYY-MM-DD') AS tanggal, hari, sesi, jam, ruangan, created_at`

type jadwalRepository struct {
	db *sqlx.DB
}

var _ jadwal.Repository = (*jadwalRepository)(nil) // interface compliance check

func NewJadwalRepository(db *sqlx.DB) *jadwalRepository {
	return &jadwalRepository{db: db}
}

func (repo jadwalRepository) selectJoined(ctx context.Context, q string, args ...interface{}) ([]jadwal.WithMataKuliah, error) {
	var rows []jadwalRow
	if err := repo.db.SelectContext(ctx, &rows, jadwalJoinedSelect+q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting jadwal")
	}
	out := make([]jadwal.WithMataKuliah, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.unbindWithMataKuliah())
	}
	return out, nil
}

func (repo jadwalRepository) QueryByTerm(ctx context.Context, term string) ([]jadwal.WithMataKuliah, error) {
	return repo.selectJoined(ctx, `
		WHERE $1 = '' OR p.tahun_ajaran = $1
		ORDER BY j.hari, j.jam, j.kelas`, term)
}

func (repo jadwalRepository) QueryByDay(ctx context.Context, hari, term string, limit int) ([]jadwal.WithMataKuliah, error) {
	return repo.selectJoined(ctx, `
		WHERE j.hari = $1 AND ($2 = '' OR p.tahun_ajaran = $2)
		ORDER BY j.jam, j.kelas
		LIMIT $3`, hari, term, limit)
}

func (repo jadwalRepository) GetByID(ctx context.Context, id int64) (jadwal.Jadwal, error) {
	var r jadwalRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+jadwalColumns+` FROM jadwal j WHERE j.id = $1`, id); err != nil {
		return jadwal.Jadwal{}, trapNoRowsErr(err, jadwal.ErrNotFound, "selecting jadwal")
	}
	return r.unbind(), nil
}

func insertJadwal(ctx context.Context, ext sqlx.ExtContext, j jadwal.Jadwal) (int64, error) {
	rows, err := sqlx.NamedQueryContext(ctx, ext, jadwalInsert, bindJadwal(j))
	if err != nil {
		return 0, errors.Wrap(err, "inserting jadwal")
	}
	defer func() { _ = rows.Close() }()

	var id int64
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return 0, errors.Wrap(err, "inserting jadwal")
		}
	}
	return id, errors.Wrap(rows.Err(), "inserting jadwal")
}

func (repo jadwalRepository) Create(ctx context.Context, j jadwal.Jadwal) (jadwal.Jadwal, error) {
	id, err := insertJadwal(ctx, repo.db, j)
	if err != nil {
		return jadwal.Jadwal{}, err
	}
	j.ID = id
	return j, nil
}

func (repo jadwalRepository) CreateMany(ctx context.Context, js []jadwal.Jadwal) (int, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, j := range js {
			if _, err := insertJadwal(ctx, tx, j); err != nil {
				return errors.Wrapf(err, "kelas %s", j.Kelas)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(js), nil
}

func (repo jadwalRepository) Update(ctx context.Context, j jadwal.Jadwal) (jadwal.Jadwal, error) {
	q := `
		UPDATE jadwal SET id_mk = :id_mk, kelas = :kelas, hari = :hari, sesi = :sesi, jam = :jam,
			ruangan = :ruangan, total_asprak = :total_asprak, dosen = :dosen
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, bindJadwal(j))
	if err != nil {
		return jadwal.Jadwal{}, errors.Wrap(err, "updating jadwal")
	}
	n, err := rowsAffected(res, "updating jadwal")
	if err != nil {
		return jadwal.Jadwal{}, err
	}
	if n == 0 {
		return jadwal.Jadwal{}, jadwal.ErrNotFound
	}
	return j, nil
}

func (repo jadwalRepository) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := in(repo.db, `DELETE FROM jadwal WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting jadwal")
	}
	return nil
}

func (repo jadwalRepository) DeleteByTerm(ctx context.Context, term string) (int, error) {
	q := `
		DELETE FROM jadwal WHERE id_mk IN (
			SELECT mk.id FROM mata_kuliah mk
			JOIN praktikum p ON p.id = mk.id_praktikum
			WHERE p.tahun_ajaran = $1
		)`
	res, err := repo.db.ExecContext(ctx, q, term)
	if err != nil {
		return 0, errors.Wrap(err, "deleting jadwal by term")
	}
	return rowsAffected(res, "deleting jadwal by term")
}

func (repo jadwalRepository) QueryPengganti(ctx context.Context, modul int) ([]jadwal.Pengganti, error) {
	var rows []penggantiRow
	q := `SELECT ` + penggantiColumns + ` FROM jadwal_pengganti WHERE modul = $1 ORDER BY id_jadwal`
	if err := repo.db.SelectContext(ctx, &rows, q, modul); err != nil {
		return nil, errors.Wrap(err, "selecting jadwal pengganti")
	}
	ps := make([]jadwal.Pengganti, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, r.unbind())
	}
	return ps, nil
}

func (repo jadwalRepository) GetPengganti(ctx context.Context, idJadwal int64, modul int) (jadwal.Pengganti, error) {
	var r penggantiRow
	q := `SELECT ` + penggantiColumns + ` FROM jadwal_pengganti WHERE id_jadwal = $1 AND modul = $2`
	if err := repo.db.GetContext(ctx, &r, q, idJadwal, modul); err != nil {
		return jadwal.Pengganti{}, trapNoRowsErr(err, jadwal.ErrPenggantiNotFound, "selecting jadwal pengganti")
	}
	return r.unbind(), nil
}

func (repo jadwalRepository) CreatePengganti(ctx context.Context, p jadwal.Pengganti) (jadwal.Pengganti, error) {
	p.ID = uuid.New().String()
	q := `
		INSERT INTO jadwal_pengganti (id, id_jadwal, modul, tanggal, hari, sesi, jam, ruangan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		p.ID, p.IDJadwal, p.Modul, p.Tanggal,
		null.NewString(p.Hari, p.Hari != ""), null.IntFrom(p.Sesi),
		null.NewString(p.Jam, p.Jam != ""), null.NewString(p.Ruangan, p.Ruangan != ""),
		p.CreatedAt.UTC(),
	)
	if err != nil {
		return jadwal.Pengganti{}, errors.Wrap(err, "inserting jadwal pengganti")
	}
	return p, nil
}

func (repo jadwalRepository) UpdatePengganti(ctx context.Context, p jadwal.Pengganti) (jadwal.Pengganti, error) {
	q := `
		UPDATE jadwal_pengganti SET tanggal = $1, hari = $2, sesi = $3, jam = $4, ruangan = $5
		WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, q,
		p.Tanggal, null.NewString(p.Hari, p.Hari != ""), null.IntFrom(p.Sesi),
		null.NewString(p.Jam, p.Jam != ""), null.NewString(p.Ruangan, p.Ruangan != ""),
		p.ID,
	)
	if err != nil {
		return jadwal.Pengganti{}, errors.Wrap(err, "updating jadwal pengganti")
	}
	n, err := rowsAffected(res, "updating jadwal pengganti")
	if err != nil {
		return jadwal.Pengganti{}, err
	}
	if n == 0 {
		return jadwal.Pengganti{}, jadwal.ErrPenggantiNotFound
	}
	return p, nil
}
