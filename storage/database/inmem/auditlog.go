package inmemdb

import (
	"context"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/auditlog"
)

type auditLogRepository struct {
	db *DB
}

var _ auditlog.Repository = (*auditLogRepository)(nil) // interface compliance check

func NewAuditLogRepository(db *DB) *auditLogRepository {
	return &auditLogRepository{db: db}
}

func (repo *auditLogRepository) Create(_ context.Context, e auditlog.Entry) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.pengguna[e.UserID]; !ok {
		e.UserID = ""
	}
	e.ID = repo.db.nextID()
	repo.db.auditLog = append(repo.db.auditLog, e)
	return nil
}

func (repo *auditLogRepository) Query(_ context.Context, page core.Page) ([]auditlog.EntryWithUser, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	total := len(repo.db.auditLog)
	start, end := page.Window(total)
	out := make([]auditlog.EntryWithUser, 0, end-start)
	// entries are appended in creation order
	for i := total - 1 - start; i > total-1-end; i-- {
		e := auditlog.EntryWithUser{Entry: repo.db.auditLog[i]}
		if p, ok := repo.db.pengguna[e.UserID]; ok {
			e.Pengguna = &auditlog.UserInfo{NamaLengkap: p.NamaLengkap, Role: p.Role}
		}
		out = append(out, e)
	}
	return out, total, nil
}
