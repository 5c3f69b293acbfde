package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/auditlog"
)

type auditLogRow struct {
	ID        int64       `db:"id"`
	TableName string      `db:"table_name"`
	RecordID  null.String `db:"record_id"`
	Action    string      `db:"action"`
	Changes   null.JSON   `db:"changes"`
	UserID    null.String `db:"user_id"`
	CreatedAt time.Time   `db:"created_at"`

	PenggunaNamaLengkap null.String `db:"pengguna_nama_lengkap"`
	PenggunaRole        null.String `db:"pengguna_role"`
}

func (r auditLogRow) unbind() auditlog.EntryWithUser {
	e := auditlog.EntryWithUser{
		Entry: auditlog.Entry{
			ID:        r.ID,
			Table:     r.TableName,
			RecordID:  r.RecordID.String,
			Action:    r.Action,
			UserID:    r.UserID.String,
			CreatedAt: r.CreatedAt.UTC(),
		},
	}
	if r.Changes.Valid {
		e.Changes = json.RawMessage(r.Changes.JSON)
	}
	if r.PenggunaNamaLengkap.Valid {
		e.Pengguna = &auditlog.UserInfo{NamaLengkap: r.PenggunaNamaLengkap.String, Role: r.PenggunaRole.String}
	}
	return e
}

type auditLogRepository struct {
	db *sqlx.DB
}

var _ auditlog.Repository = (*auditLogRepository)(nil) // interface compliance check

func NewAuditLogRepository(db *sqlx.DB) *auditLogRepository {
	return &auditLogRepository{db: db}
}

func (repo auditLogRepository) Create(ctx context.Context, e auditlog.Entry) error {
	userID := null.NewString(e.UserID, validUUID(e.UserID))
	q := `
		INSERT INTO audit_log (table_name, record_id, action, changes, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q,
		e.Table, null.NewString(e.RecordID, e.RecordID != ""), e.Action,
		null.NewJSON(e.Changes, len(e.Changes) > 0), userID, e.CreatedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "inserting audit log")
	}
	return nil
}

func (repo auditLogRepository) Query(ctx context.Context, page core.Page) ([]auditlog.EntryWithUser, int, error) {
	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_log`); err != nil {
		return nil, 0, errors.Wrap(err, "counting audit logs")
	}

	var rows []auditLogRow
	q := `
		SELECT l.id, l.table_name, l.record_id, l.action, l.changes, l.user_id, l.created_at,
			pg.nama_lengkap AS pengguna_nama_lengkap, pg.role AS pengguna_role
		FROM audit_log l
		LEFT JOIN pengguna pg ON pg.id = l.user_id
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $1 OFFSET $2`
	if err := repo.db.SelectContext(ctx, &rows, q, page.Size, page.Offset()); err != nil {
		return nil, 0, errors.Wrap(err, "selecting audit logs")
	}
	entries := make([]auditlog.EntryWithUser, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.unbind())
	}
	return entries, total, nil
}
