package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/praktikum"
)

type praktikumRow struct {
	ID          string `db:"id"`
	Nama        string `db:"nama"`
	TahunAjaran string `db:"tahun_ajaran"`
	AsprakCount int    `db:"asprak_count"`
}

func (r praktikumRow) unbind() praktikum.Praktikum {
	return praktikum.Praktikum{ID: r.ID, Nama: r.Nama, TahunAjaran: r.TahunAjaran}
}

func unbindPraktikums(rows []praktikumRow) []praktikum.Praktikum {
	ps := make([]praktikum.Praktikum, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, r.unbind())
	}
	return ps
}

const praktikumColumns = `p.id, p.nama, p.tahun_ajaran`

type praktikumRepository struct {
	db *sqlx.DB
}

var _ praktikum.Repository = (*praktikumRepository)(nil) // interface compliance check

func NewPraktikumRepository(db *sqlx.DB) *praktikumRepository {
	return &praktikumRepository{db: db}
}

func (repo praktikumRepository) QueryAll(ctx context.Context) ([]praktikum.Praktikum, error) {
	var rows []praktikumRow
	q := `SELECT ` + praktikumColumns + ` FROM praktikum p ORDER BY p.nama, p.tahun_ajaran DESC`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting praktikum")
	}
	return unbindPraktikums(rows), nil
}

func (repo praktikumRepository) QueryByTerm(ctx context.Context, term string) ([]praktikum.WithStats, error) {
	var rows []praktikumRow
	q := `
		SELECT ` + praktikumColumns + `, COUNT(ap.id) AS asprak_count
		FROM praktikum p
		LEFT JOIN asprak_praktikum ap ON ap.id_praktikum = p.id
		WHERE $1 = '' OR p.tahun_ajaran = $1
		GROUP BY p.id
		ORDER BY p.nama`
	if err := repo.db.SelectContext(ctx, &rows, q, term); err != nil {
		return nil, errors.Wrap(err, "selecting praktikum by term")
	}
	out := make([]praktikum.WithStats, 0, len(rows))
	for _, r := range rows {
		out = append(out, praktikum.WithStats{Praktikum: r.unbind(), AsprakCount: r.AsprakCount})
	}
	return out, nil
}

func (repo praktikumRepository) QueryByTerms(ctx context.Context, terms []string) ([]praktikum.Praktikum, error) {
	if len(terms) == 0 {
		return []praktikum.Praktikum{}, nil
	}
	q, args, err := in(repo.db, `SELECT `+praktikumColumns+` FROM praktikum p WHERE p.tahun_ajaran IN (?)`, terms)
	if err != nil {
		return nil, err
	}
	var rows []praktikumRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting praktikum by terms")
	}
	return unbindPraktikums(rows), nil
}

func (repo praktikumRepository) QueryByName(ctx context.Context, nama string) ([]praktikum.Praktikum, error) {
	var rows []praktikumRow
	q := `SELECT ` + praktikumColumns + ` FROM praktikum p WHERE p.nama = $1 ORDER BY p.tahun_ajaran DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, nama); err != nil {
		return nil, errors.Wrap(err, "selecting praktikum by name")
	}
	return unbindPraktikums(rows), nil
}

func (repo praktikumRepository) GetByID(ctx context.Context, id string) (praktikum.Praktikum, error) {
	if !validUUID(id) {
		return praktikum.Praktikum{}, praktikum.ErrNotFound
	}
	var r praktikumRow
	q := `SELECT ` + praktikumColumns + ` FROM praktikum p WHERE p.id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return praktikum.Praktikum{}, trapNoRowsErr(err, praktikum.ErrNotFound, "selecting praktikum")
	}
	return r.unbind(), nil
}

func (repo praktikumRepository) GetByNameAndTerm(ctx context.Context, nama, term string) (praktikum.Praktikum, error) {
	var r praktikumRow
	q := `SELECT ` + praktikumColumns + ` FROM praktikum p WHERE p.nama = $1 AND p.tahun_ajaran = $2`
	if err := repo.db.GetContext(ctx, &r, q, nama, term); err != nil {
		return praktikum.Praktikum{}, trapNoRowsErr(err, praktikum.ErrNotFound, "selecting praktikum")
	}
	return r.unbind(), nil
}

func (repo praktikumRepository) Create(ctx context.Context, p praktikum.Praktikum) (praktikum.Praktikum, error) {
	p.ID = uuid.New().String()
	q := `INSERT INTO praktikum (id, nama, tahun_ajaran) VALUES ($1, $2, $3)`
	if _, err := repo.db.ExecContext(ctx, q, p.ID, p.Nama, p.TahunAjaran); err != nil {
		return praktikum.Praktikum{}, errors.Wrap(err, "inserting praktikum")
	}
	return p, nil
}

func (repo praktikumRepository) CreateMany(ctx context.Context, ps []praktikum.Praktikum) ([]praktikum.Praktikum, error) {
	created := make([]praktikum.Praktikum, 0, len(ps))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, p := range ps {
			p.ID = uuid.New().String()
			q := `INSERT INTO praktikum (id, nama, tahun_ajaran) VALUES ($1, $2, $3)`
			if _, err := tx.ExecContext(ctx, q, p.ID, p.Nama, p.TahunAjaran); err != nil {
				return errors.Wrapf(err, "inserting praktikum %s", p.Nama)
			}
			created = append(created, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (repo praktikumRepository) Delete(ctx context.Context, ids ...string) error {
	if ids = uuids(ids); len(ids) == 0 {
		return nil
	}
	q, args, err := in(repo.db, `DELETE FROM praktikum WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting praktikum")
	}
	return nil
}

func (repo praktikumRepository) QueryTerms(ctx context.Context) ([]string, error) {
	var terms []string
	q := `SELECT DISTINCT tahun_ajaran FROM praktikum ORDER BY tahun_ajaran DESC`
	if err := repo.db.SelectContext(ctx, &terms, q); err != nil {
		return nil, errors.Wrap(err, "selecting terms")
	}
	return terms, nil
}

func (repo praktikumRepository) QuerySlots(ctx context.Context, id string) ([]praktikum.Slot, error) {
	if !validUUID(id) {
		return []praktikum.Slot{}, nil
	}
	var rows []struct {
		Kelas   string `db:"kelas"`
		Hari    string `db:"hari"`
		Jam     string `db:"jam"`
		Ruangan string `db:"ruangan"`
	}
	q := `
		SELECT j.kelas, j.hari, j.jam, COALESCE(j.ruangan, '') AS ruangan
		FROM jadwal j
		JOIN mata_kuliah mk ON mk.id = j.id_mk
		WHERE mk.id_praktikum = $1
		ORDER BY j.kelas, j.hari, j.jam`
	if err := repo.db.SelectContext(ctx, &rows, q, id); err != nil {
		return nil, errors.Wrap(err, "selecting slots")
	}
	slots := make([]praktikum.Slot, 0, len(rows))
	for _, r := range rows {
		slots = append(slots, praktikum.Slot{Kelas: r.Kelas, Hari: r.Hari, Jam: r.Jam, Ruangan: r.Ruangan})
	}
	return slots, nil
}
