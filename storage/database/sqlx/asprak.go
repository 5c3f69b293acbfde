package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/asprak"
)

type asprakRow struct {
	ID          string    `db:"id"`
	NIM         string    `db:"nim"`
	NamaLengkap string    `db:"nama_lengkap"`
	Kode        string    `db:"kode"`
	Angkatan    int       `db:"angkatan"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r asprakRow) unbind() asprak.Asprak {
	return asprak.Asprak{
		ID:          r.ID,
		NIM:         r.NIM,
		NamaLengkap: r.NamaLengkap,
		Kode:        r.Kode,
		Angkatan:    r.Angkatan,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

const asprakColumns = `id, nim, nama_lengkap, kode, angkatan, created_at`

type asprakRepository struct {
	db *sqlx.DB
}

var _ asprak.Repository = (*asprakRepository)(nil) // interface compliance check

func NewAsprakRepository(db *sqlx.DB) *asprakRepository {
	return &asprakRepository{db: db}
}

func (repo asprakRepository) get(ctx context.Context, where string, arg interface{}) (asprak.Asprak, error) {
	var r asprakRow
	q := `SELECT ` + asprakColumns + ` FROM asprak WHERE ` + where
	if err := repo.db.GetContext(ctx, &r, q, arg); err != nil {
		return asprak.Asprak{}, trapNoRowsErr(err, asprak.ErrNotFound, "selecting asprak")
	}
	return r.unbind(), nil
}

func (repo asprakRepository) QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]asprak.Asprak, error) {
	ordering = core.CleanOrderings(ordering, asprak.OrderingFields...)
	orderBy := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		orderBy = append(orderBy, ord.String())
	}
	orderBy = append(orderBy, "nim ASC")

	var rows []asprakRow
	q := `SELECT ` + asprakColumns + ` FROM asprak ORDER BY ` + strings.Join(orderBy, ", ")
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting asprak")
	}
	as := make([]asprak.Asprak, 0, len(rows))
	for _, r := range rows {
		as = append(as, r.unbind())
	}
	return as, nil
}

func (repo asprakRepository) GetByID(ctx context.Context, id string) (asprak.Asprak, error) {
	if !validUUID(id) {
		return asprak.Asprak{}, asprak.ErrNotFound
	}
	return repo.get(ctx, `id = $1`, id)
}

func (repo asprakRepository) GetByNIM(ctx context.Context, nim string) (asprak.Asprak, error) {
	return repo.get(ctx, `nim = $1`, nim)
}

// GetByKode returns the most recent holder when a code was shared by several aspraks.
func (repo asprakRepository) GetByKode(ctx context.Context, kode string) (asprak.Asprak, error) {
	return repo.get(ctx, `kode = $1 ORDER BY angkatan DESC, created_at DESC LIMIT 1`, kode)
}

func (repo asprakRepository) Create(ctx context.Context, a asprak.Asprak) (asprak.Asprak, error) {
	a.ID = uuid.New().String()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	q := `
		INSERT INTO asprak (id, nim, nama_lengkap, kode, angkatan, created_at)
		VALUES (:id, :nim, :nama_lengkap, :kode, :angkatan, :created_at)`
	r := asprakRow{ID: a.ID, NIM: a.NIM, NamaLengkap: a.NamaLengkap, Kode: a.Kode, Angkatan: a.Angkatan, CreatedAt: a.CreatedAt.UTC()}
	if _, err := repo.db.NamedExecContext(ctx, q, r); err != nil {
		return asprak.Asprak{}, errors.Wrap(err, "inserting asprak")
	}
	return a, nil
}

func (repo asprakRepository) Update(ctx context.Context, a asprak.Asprak) (asprak.Asprak, error) {
	q := `UPDATE asprak SET nim = $1, nama_lengkap = $2, kode = $3, angkatan = $4 WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, q, a.NIM, a.NamaLengkap, a.Kode, a.Angkatan, a.ID)
	if err != nil {
		return asprak.Asprak{}, errors.Wrap(err, "updating asprak")
	}
	n, err := rowsAffected(res, "updating asprak")
	if err != nil {
		return asprak.Asprak{}, err
	}
	if n == 0 {
		return asprak.Asprak{}, asprak.ErrNotFound
	}
	return a, nil
}

func (repo asprakRepository) Delete(ctx context.Context, ids ...string) error {
	if ids = uuids(ids); len(ids) == 0 {
		return nil
	}
	q, args, err := in(repo.db, `DELETE FROM asprak WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting asprak")
	}
	return nil
}

func (repo asprakRepository) QueryAssignments(ctx context.Context, id string) ([]asprak.Assignment, error) {
	if !validUUID(id) {
		return []asprak.Assignment{}, nil
	}
	var rows []struct {
		ID          int    `db:"id"`
		IDPraktikum string `db:"id_praktikum"`
		Nama        string `db:"nama"`
		TahunAjaran string `db:"tahun_ajaran"`
	}
	q := `
		SELECT ap.id, p.id AS id_praktikum, p.nama, p.tahun_ajaran
		FROM asprak_praktikum ap
		JOIN praktikum p ON p.id = ap.id_praktikum
		WHERE ap.id_asprak = $1
		ORDER BY p.tahun_ajaran DESC, p.nama`
	if err := repo.db.SelectContext(ctx, &rows, q, id); err != nil {
		return nil, errors.Wrap(err, "selecting assignments")
	}
	out := make([]asprak.Assignment, 0, len(rows))
	for _, r := range rows {
		out = append(out, asprak.Assignment{ID: r.ID, IDPraktikum: r.IDPraktikum, Nama: r.Nama, TahunAjaran: r.TahunAjaran})
	}
	return out, nil
}
