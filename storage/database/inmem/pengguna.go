package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/labasprak/asprak/core/pengguna"
)

type penggunaRepository struct {
	db *DB
}

var _ pengguna.Repository = (*penggunaRepository)(nil) // interface compliance check

func NewPenggunaRepository(db *DB) *penggunaRepository {
	return &penggunaRepository{db: db}
}

func (repo *penggunaRepository) CheckEmailUniqueness(_ context.Context, email string, excludeIDs ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	for _, p := range repo.db.pengguna {
		if p.Email == email && !excluded[p.ID] {
			return pengguna.ErrEmailExists
		}
	}
	return nil
}

func (repo *penggunaRepository) Create(_ context.Context, p pengguna.Pengguna) (pengguna.Pengguna, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.pengguna {
		if existing.Email == p.Email {
			return pengguna.Pengguna{}, errUnique("pengguna", "email")
		}
	}
	p.ID = uuid.New().String()
	repo.db.pengguna[p.ID] = p
	return p, nil
}

func (repo *penggunaRepository) QueryAll(_ context.Context) ([]pengguna.Pengguna, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ps := make([]pengguna.Pengguna, 0, len(repo.db.pengguna))
	for _, p := range repo.db.pengguna {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].Email < ps[j].Email
	})
	return ps, nil
}

func (repo *penggunaRepository) GetByID(_ context.Context, id string) (pengguna.Pengguna, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.pengguna[id]; ok {
		return p, nil
	}
	return pengguna.Pengguna{}, pengguna.ErrNotFound
}

func (repo *penggunaRepository) GetByEmail(_ context.Context, email string) (pengguna.Pengguna, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.pengguna {
		if p.Email == email {
			return p, nil
		}
	}
	return pengguna.Pengguna{}, pengguna.ErrNotFound
}

func (repo *penggunaRepository) Update(_ context.Context, p pengguna.Pengguna) (pengguna.Pengguna, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.pengguna[p.ID]; !ok {
		return pengguna.Pengguna{}, pengguna.ErrNotFound
	}
	repo.db.pengguna[p.ID] = p
	return p, nil
}

func (repo *penggunaRepository) Delete(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		delete(repo.db.pengguna, id)
	}
	kept := repo.db.koordinator[:0]
	for _, k := range repo.db.koordinator {
		if !gone[k.penggunaID] {
			kept = append(kept, k)
		}
	}
	repo.db.koordinator = kept
	for i, e := range repo.db.auditLog {
		if gone[e.UserID] {
			repo.db.auditLog[i].UserID = ""
		}
	}
	return nil
}

func (repo *penggunaRepository) QueryAssignments(_ context.Context, id string) ([]pengguna.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]pengguna.Assignment, 0)
	for _, k := range repo.db.koordinator {
		if k.penggunaID != id || !k.active {
			continue
		}
		p, ok := repo.db.praktikum[k.praktikumID]
		if !ok {
			continue
		}
		out = append(out, pengguna.Assignment{IDPraktikum: p.ID, TahunAjaran: p.TahunAjaran, NamaPraktikum: p.Nama})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TahunAjaran != out[j].TahunAjaran {
			return out[i].TahunAjaran > out[j].TahunAjaran
		}
		return out[i].NamaPraktikum < out[j].NamaPraktikum
	})
	return out, nil
}

func (repo *penggunaRepository) SetAssignments(_ context.Context, id string, praktikumIDs []string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.pengguna[id]; !ok {
		return errForeignKey("asprak_koordinator", "id_pengguna")
	}
	for _, pid := range praktikumIDs {
		if _, ok := repo.db.praktikum[pid]; !ok {
			return errForeignKey("asprak_koordinator", "id_praktikum")
		}
	}

	wanted := make(map[string]bool, len(praktikumIDs))
	for _, pid := range praktikumIDs {
		wanted[pid] = true
	}
	for i, k := range repo.db.koordinator {
		if k.penggunaID != id {
			continue
		}
		repo.db.koordinator[i].active = wanted[k.praktikumID]
		delete(wanted, k.praktikumID)
	}
	for _, pid := range praktikumIDs {
		if wanted[pid] {
			repo.db.koordinator = append(repo.db.koordinator, koordinator{penggunaID: id, praktikumID: pid, active: true})
			delete(wanted, pid)
		}
	}
	return nil
}
