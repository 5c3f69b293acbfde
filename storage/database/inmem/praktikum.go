package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/labasprak/asprak/core/praktikum"
)

type praktikumRepository struct {
	db *DB
}

var _ praktikum.Repository = (*praktikumRepository)(nil) // interface compliance check

func NewPraktikumRepository(db *DB) *praktikumRepository {
	return &praktikumRepository{db: db}
}

func (repo *praktikumRepository) query(match func(p praktikum.Praktikum) bool) []praktikum.Praktikum {
	ps := make([]praktikum.Praktikum, 0, len(repo.db.praktikum))
	for _, p := range repo.db.praktikum {
		if match == nil || match(p) {
			ps = append(ps, p)
		}
	}
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Nama != ps[j].Nama {
			return ps[i].Nama < ps[j].Nama
		}
		return ps[i].TahunAjaran > ps[j].TahunAjaran
	})
	return ps
}

func (repo *praktikumRepository) QueryAll(_ context.Context) ([]praktikum.Praktikum, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(nil), nil
}

func (repo *praktikumRepository) QueryByTerm(_ context.Context, term string) ([]praktikum.WithStats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, l := range repo.db.links {
		counts[l.praktikumID]++
	}
	ps := repo.query(func(p praktikum.Praktikum) bool { return inTerm(p, term) })
	out := make([]praktikum.WithStats, 0, len(ps))
	for _, p := range ps {
		out = append(out, praktikum.WithStats{Praktikum: p, AsprakCount: counts[p.ID]})
	}
	return out, nil
}

func (repo *praktikumRepository) QueryByTerms(_ context.Context, terms []string) ([]praktikum.Praktikum, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(terms))
	for _, t := range terms {
		wanted[t] = true
	}
	return repo.query(func(p praktikum.Praktikum) bool { return wanted[p.TahunAjaran] }), nil
}

func (repo *praktikumRepository) QueryByName(_ context.Context, nama string) ([]praktikum.Praktikum, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(p praktikum.Praktikum) bool { return p.Nama == nama }), nil
}

func (repo *praktikumRepository) GetByID(_ context.Context, id string) (praktikum.Praktikum, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.praktikum[id]; ok {
		return p, nil
	}
	return praktikum.Praktikum{}, praktikum.ErrNotFound
}

func (repo *praktikumRepository) GetByNameAndTerm(_ context.Context, nama, term string) (praktikum.Praktikum, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.praktikum {
		if p.Nama == nama && p.TahunAjaran == term {
			return p, nil
		}
	}
	return praktikum.Praktikum{}, praktikum.ErrNotFound
}

func (repo *praktikumRepository) create(p praktikum.Praktikum) (praktikum.Praktikum, error) {
	for _, existing := range repo.db.praktikum {
		if existing.Nama == p.Nama && existing.TahunAjaran == p.TahunAjaran {
			return praktikum.Praktikum{}, errUnique("praktikum", "nama, tahun_ajaran")
		}
	}
	p.ID = uuid.New().String()
	repo.db.praktikum[p.ID] = p
	return p, nil
}

func (repo *praktikumRepository) Create(_ context.Context, p praktikum.Praktikum) (praktikum.Praktikum, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.create(p)
}

func (repo *praktikumRepository) CreateMany(_ context.Context, ps []praktikum.Praktikum) ([]praktikum.Praktikum, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	created := make([]praktikum.Praktikum, 0, len(ps))
	for _, p := range ps {
		p, err := repo.create(p)
		if err != nil {
			repo.db.deletePraktikum(praktikumIDs(created)...)
			return nil, err
		}
		created = append(created, p)
	}
	return created, nil
}

func praktikumIDs(ps []praktikum.Praktikum) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func (repo *praktikumRepository) Delete(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.deletePraktikum(ids...)
	return nil
}

func (repo *praktikumRepository) QueryTerms(_ context.Context) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[string]bool)
	terms := make([]string, 0)
	for _, p := range repo.db.praktikum {
		if !seen[p.TahunAjaran] {
			seen[p.TahunAjaran] = true
			terms = append(terms, p.TahunAjaran)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(terms)))
	return terms, nil
}

func (repo *praktikumRepository) QuerySlots(_ context.Context, id string) ([]praktikum.Slot, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	slots := make([]praktikum.Slot, 0)
	for _, j := range repo.db.jadwal {
		if repo.db.mataKuliah[j.IDMK].IDPraktikum == id {
			slots = append(slots, praktikum.Slot{Kelas: j.Kelas, Hari: j.Hari, Jam: j.Jam, Ruangan: j.Ruangan})
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Kelas != b.Kelas {
			return a.Kelas < b.Kelas
		}
		if a.Hari != b.Hari {
			return a.Hari < b.Hari
		}
		return a.Jam < b.Jam
	})
	return slots, nil
}
