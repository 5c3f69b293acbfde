package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/labasprak/asprak/core/pengguna"
)

type penggunaRow struct {
	ID           string    `db:"id"`
	NamaLengkap  string    `db:"nama_lengkap"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

func bindPengguna(p pengguna.Pengguna) penggunaRow {
	return penggunaRow{
		ID:           p.ID,
		NamaLengkap:  p.NamaLengkap,
		Email:        p.Email,
		Role:         p.Role,
		IsActive:     p.IsActive,
		PasswordHash: p.PasswordHash,
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(p.LastLogin.UTC(), !p.LastLogin.IsZero()),
	}
}

func (r penggunaRow) unbind() pengguna.Pengguna {
	p := pengguna.Pengguna{
		ID:           r.ID,
		NamaLengkap:  r.NamaLengkap,
		Email:        r.Email,
		Role:         r.Role,
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.LastLogin.Valid {
		p.LastLogin = r.LastLogin.Time.UTC()
	}
	return p
}

const penggunaColumns = `id, nama_lengkap, email, role, is_active, password_hash, created_at, updated_at, last_login`

type penggunaRepository struct {
	db *sqlx.DB
}

var _ pengguna.Repository = (*penggunaRepository)(nil) // interface compliance check

func NewPenggunaRepository(db *sqlx.DB) *penggunaRepository {
	return &penggunaRepository{db: db}
}

func (repo penggunaRepository) get(ctx context.Context, where string, arg interface{}) (pengguna.Pengguna, error) {
	var r penggunaRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+penggunaColumns+` FROM pengguna WHERE `+where, arg); err != nil {
		return pengguna.Pengguna{}, trapNoRowsErr(err, pengguna.ErrNotFound, "selecting pengguna")
	}
	return r.unbind(), nil
}

func (repo penggunaRepository) CheckEmailUniqueness(ctx context.Context, email string, excludeIDs ...string) error {
	q := `SELECT EXISTS (SELECT 1 FROM pengguna WHERE email = ?`
	args := []interface{}{email}
	if excludeIDs = uuids(excludeIDs); len(excludeIDs) > 0 {
		q += ` AND id NOT IN (?)`
		args = append(args, excludeIDs)
	}
	q += `)`

	q, args, err := in(repo.db, q, args...)
	if err != nil {
		return err
	}
	var exists bool
	if err = repo.db.GetContext(ctx, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return pengguna.ErrEmailExists
	}
	return nil
}

func (repo penggunaRepository) Create(ctx context.Context, p pengguna.Pengguna) (pengguna.Pengguna, error) {
	p.ID = uuid.New().String()
	q := `
		INSERT INTO pengguna (` + penggunaColumns + `)
		VALUES (:id, :nama_lengkap, :email, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, bindPengguna(p)); err != nil {
		return pengguna.Pengguna{}, errors.Wrap(err, "inserting pengguna")
	}
	return p, nil
}

func (repo penggunaRepository) QueryAll(ctx context.Context) ([]pengguna.Pengguna, error) {
	var rows []penggunaRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+penggunaColumns+` FROM pengguna ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "selecting pengguna")
	}
	ps := make([]pengguna.Pengguna, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, r.unbind())
	}
	return ps, nil
}

func (repo penggunaRepository) GetByID(ctx context.Context, id string) (pengguna.Pengguna, error) {
	if !validUUID(id) {
		return pengguna.Pengguna{}, pengguna.ErrNotFound
	}
	return repo.get(ctx, `id = $1`, id)
}

func (repo penggunaRepository) GetByEmail(ctx context.Context, email string) (pengguna.Pengguna, error) {
	return repo.get(ctx, `email = $1`, email)
}

func (repo penggunaRepository) Update(ctx context.Context, p pengguna.Pengguna) (pengguna.Pengguna, error) {
	q := `
		UPDATE pengguna SET nama_lengkap = :nama_lengkap, email = :email, role = :role, is_active = :is_active,
			password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, bindPengguna(p))
	if err != nil {
		return pengguna.Pengguna{}, errors.Wrap(err, "updating pengguna")
	}
	n, err := rowsAffected(res, "updating pengguna")
	if err != nil {
		return pengguna.Pengguna{}, err
	}
	if n == 0 {
		return pengguna.Pengguna{}, pengguna.ErrNotFound
	}
	return p, nil
}

func (repo penggunaRepository) Delete(ctx context.Context, ids ...string) error {
	if ids = uuids(ids); len(ids) == 0 {
		return nil
	}
	q, args, err := in(repo.db, `DELETE FROM pengguna WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting pengguna")
	}
	return nil
}

func (repo penggunaRepository) QueryAssignments(ctx context.Context, id string) ([]pengguna.Assignment, error) {
	if !validUUID(id) {
		return []pengguna.Assignment{}, nil
	}
	var rows []struct {
		IDPraktikum   string `db:"id_praktikum"`
		TahunAjaran   string `db:"tahun_ajaran"`
		NamaPraktikum string `db:"nama_praktikum"`
	}
	q := `
		SELECT ak.id_praktikum, p.tahun_ajaran, p.nama AS nama_praktikum
		FROM asprak_koordinator ak
		JOIN praktikum p ON p.id = ak.id_praktikum
		WHERE ak.id_pengguna = $1 AND ak.is_active
		ORDER BY p.tahun_ajaran DESC, p.nama`
	if err := repo.db.SelectContext(ctx, &rows, q, id); err != nil {
		return nil, errors.Wrap(err, "selecting koordinator assignments")
	}
	out := make([]pengguna.Assignment, 0, len(rows))
	for _, r := range rows {
		out = append(out, pengguna.Assignment{IDPraktikum: r.IDPraktikum, TahunAjaran: r.TahunAjaran, NamaPraktikum: r.NamaPraktikum})
	}
	return out, nil
}

func (repo penggunaRepository) SetAssignments(ctx context.Context, id string, praktikumIDs []string) error {
	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE asprak_koordinator SET is_active = FALSE WHERE id_pengguna = $1`, id); err != nil {
			return errors.Wrap(err, "deactivating koordinator assignments")
		}
		q := `
			INSERT INTO asprak_koordinator (id_pengguna, id_praktikum, is_active) VALUES ($1, $2, TRUE)
			ON CONFLICT (id_pengguna, id_praktikum) DO UPDATE SET is_active = TRUE`
		for _, pid := range uuids(praktikumIDs) {
			if _, err := tx.ExecContext(ctx, q, id, pid); err != nil {
				return errors.Wrapf(err, "assigning praktikum %s", pid)
			}
		}
		return nil
	})
}
