package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/asprak"
)

type asprakRepository struct {
	db *DB
}

var _ asprak.Repository = (*asprakRepository)(nil) // interface compliance check

func NewAsprakRepository(db *DB) *asprakRepository {
	return &asprakRepository{db: db}
}

// compareAsprak compares two aspraks on one field, returning -1, 0 or 1.
func compareAsprak(a, b asprak.Asprak, field string) int {
	switch field {
	case "nama_lengkap":
		return strings.Compare(a.NamaLengkap, b.NamaLengkap)
	case "kode":
		return strings.Compare(a.Kode, b.Kode)
	case "angkatan":
		return a.Angkatan - b.Angkatan
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	default:
		return strings.Compare(a.NIM, b.NIM)
	}
}

func (repo *asprakRepository) QueryAll(_ context.Context, ordering []core.DBOrdering) ([]asprak.Asprak, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ordering = append(core.CleanOrderings(ordering, asprak.OrderingFields...), core.DBOrdering{Field: "nim", Ascending: true})
	as := make([]asprak.Asprak, 0, len(repo.db.asprak))
	for _, a := range repo.db.asprak {
		as = append(as, a)
	}
	sort.Slice(as, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareAsprak(as[i], as[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return as, nil
}

func (repo *asprakRepository) GetByID(_ context.Context, id string) (asprak.Asprak, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.asprak[id]; ok {
		return a, nil
	}
	return asprak.Asprak{}, asprak.ErrNotFound
}

func (repo *asprakRepository) GetByNIM(_ context.Context, nim string) (asprak.Asprak, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, a := range repo.db.asprak {
		if a.NIM == nim {
			return a, nil
		}
	}
	return asprak.Asprak{}, asprak.ErrNotFound
}

func (repo *asprakRepository) GetByKode(_ context.Context, kode string) (asprak.Asprak, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var (
		found asprak.Asprak
		ok    bool
	)
	for _, a := range repo.db.asprak {
		if a.Kode == kode && (!ok || a.Angkatan > found.Angkatan) {
			found, ok = a, true
		}
	}
	if !ok {
		return asprak.Asprak{}, asprak.ErrNotFound
	}
	return found, nil
}

func (repo *asprakRepository) Create(_ context.Context, a asprak.Asprak) (asprak.Asprak, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.asprak {
		if existing.NIM == a.NIM {
			return asprak.Asprak{}, errUnique("asprak", "nim")
		}
	}
	a.ID = uuid.New().String()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	repo.db.asprak[a.ID] = a
	return a, nil
}

func (repo *asprakRepository) Update(_ context.Context, a asprak.Asprak) (asprak.Asprak, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.asprak[a.ID]
	if !ok {
		return asprak.Asprak{}, asprak.ErrNotFound
	}
	a.CreatedAt = orig.CreatedAt
	repo.db.asprak[a.ID] = a
	return a, nil
}

func (repo *asprakRepository) Delete(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.deleteAsprak(ids...)
	return nil
}

func (repo *asprakRepository) QueryAssignments(_ context.Context, id string) ([]asprak.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]asprak.Assignment, 0)
	for _, l := range repo.db.links {
		if l.asprakID != id {
			continue
		}
		p := repo.db.praktikum[l.praktikumID]
		out = append(out, asprak.Assignment{ID: l.id, IDPraktikum: p.ID, Nama: p.Nama, TahunAjaran: p.TahunAjaran})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TahunAjaran != out[j].TahunAjaran {
			return out[i].TahunAjaran > out[j].TahunAjaran
		}
		return out[i].Nama < out[j].Nama
	})
	return out, nil
}
