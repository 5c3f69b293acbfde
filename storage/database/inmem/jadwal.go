package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/labasprak/asprak/core/jadwal"
)

type jadwalRepository struct {
	db *DB
}

var _ jadwal.Repository = (*jadwalRepository)(nil) // interface compliance check

func NewJadwalRepository(db *DB) *jadwalRepository {
	return &jadwalRepository{db: db}
}

func (repo *jadwalRepository) joined(match func(j jadwal.WithMataKuliah) bool) []jadwal.WithMataKuliah {
	out := make([]jadwal.WithMataKuliah, 0, len(repo.db.jadwal))
	for _, j := range repo.db.jadwal {
		mk, p := repo.db.praktikumOfJadwal(j.ID)
		w := jadwal.WithMataKuliah{
			Jadwal: j,
			MataKuliah: jadwal.MKInfo{
				NamaLengkap:  mk.NamaLengkap,
				ProgramStudi: mk.ProgramStudi,
				Praktikum:    jadwal.MKPraktikum{Nama: p.Nama, TahunAjaran: p.TahunAjaran},
			},
		}
		if match(w) {
			out = append(out, w)
		}
	}
	return out
}

func sortJadwal(js []jadwal.WithMataKuliah, byDay bool) {
	sort.Slice(js, func(i, j int) bool {
		a, b := js[i], js[j]
		if byDay && a.Hari != b.Hari {
			return a.Hari < b.Hari
		}
		if a.Jam != b.Jam {
			return a.Jam < b.Jam
		}
		if a.Kelas != b.Kelas {
			return a.Kelas < b.Kelas
		}
		return a.ID < b.ID
	})
}

func (repo *jadwalRepository) QueryByTerm(_ context.Context, term string) ([]jadwal.WithMataKuliah, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	js := repo.joined(func(j jadwal.WithMataKuliah) bool {
		return term == "" || j.MataKuliah.Praktikum.TahunAjaran == term
	})
	sortJadwal(js, true)
	return js, nil
}

func (repo *jadwalRepository) QueryByDay(_ context.Context, hari, term string, limit int) ([]jadwal.WithMataKuliah, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	js := repo.joined(func(j jadwal.WithMataKuliah) bool {
		return j.Hari == hari && (term == "" || j.MataKuliah.Praktikum.TahunAjaran == term)
	})
	sortJadwal(js, false)
	if limit > 0 && len(js) > limit {
		js = js[:limit]
	}
	return js, nil
}

func (repo *jadwalRepository) GetByID(_ context.Context, id int64) (jadwal.Jadwal, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if j, ok := repo.db.jadwal[id]; ok {
		return j, nil
	}
	return jadwal.Jadwal{}, jadwal.ErrNotFound
}

func (repo *jadwalRepository) create(j jadwal.Jadwal) (jadwal.Jadwal, error) {
	if _, ok := repo.db.mataKuliah[j.IDMK]; !ok {
		return jadwal.Jadwal{}, errForeignKey("jadwal", "id_mk")
	}
	j.ID = repo.db.nextID()
	repo.db.jadwal[j.ID] = j
	return j, nil
}

func (repo *jadwalRepository) Create(_ context.Context, j jadwal.Jadwal) (jadwal.Jadwal, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.create(j)
}

func (repo *jadwalRepository) CreateMany(_ context.Context, js []jadwal.Jadwal) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	created := make([]int64, 0, len(js))
	for _, j := range js {
		j, err := repo.create(j)
		if err != nil {
			repo.db.deleteJadwal(created...)
			return 0, err
		}
		created = append(created, j.ID)
	}
	return len(created), nil
}

func (repo *jadwalRepository) Update(_ context.Context, j jadwal.Jadwal) (jadwal.Jadwal, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.jadwal[j.ID]; !ok {
		return jadwal.Jadwal{}, jadwal.ErrNotFound
	}
	if _, ok := repo.db.mataKuliah[j.IDMK]; !ok {
		return jadwal.Jadwal{}, errForeignKey("jadwal", "id_mk")
	}
	repo.db.jadwal[j.ID] = j
	return j, nil
}

func (repo *jadwalRepository) Delete(_ context.Context, ids ...int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.deleteJadwal(ids...)
	return nil
}

func (repo *jadwalRepository) DeleteByTerm(_ context.Context, term string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var ids []int64
	for id := range repo.db.jadwal {
		if _, p := repo.db.praktikumOfJadwal(id); p.TahunAjaran == term {
			ids = append(ids, id)
		}
	}
	repo.db.deleteJadwal(ids...)
	return len(ids), nil
}

func (repo *jadwalRepository) QueryPengganti(_ context.Context, modul int) ([]jadwal.Pengganti, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ps := make([]jadwal.Pengganti, 0)
	for _, p := range repo.db.pengganti {
		if p.Modul == modul {
			ps = append(ps, p)
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].IDJadwal < ps[j].IDJadwal })
	return ps, nil
}

func (repo *jadwalRepository) GetPengganti(_ context.Context, idJadwal int64, modul int) (jadwal.Pengganti, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.pengganti {
		if p.IDJadwal == idJadwal && p.Modul == modul {
			return p, nil
		}
	}
	return jadwal.Pengganti{}, jadwal.ErrPenggantiNotFound
}

func (repo *jadwalRepository) CreatePengganti(_ context.Context, p jadwal.Pengganti) (jadwal.Pengganti, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.jadwal[p.IDJadwal]; !ok {
		return jadwal.Pengganti{}, errForeignKey("jadwal_pengganti", "id_jadwal")
	}
	for _, existing := range repo.db.pengganti {
		if existing.IDJadwal == p.IDJadwal && existing.Modul == p.Modul {
			return jadwal.Pengganti{}, errUnique("jadwal_pengganti", "id_jadwal, modul")
		}
	}
	p.ID = uuid.New().String()
	repo.db.pengganti[p.ID] = p
	return p, nil
}

func (repo *jadwalRepository) UpdatePengganti(_ context.Context, p jadwal.Pengganti) (jadwal.Pengganti, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.pengganti[p.ID]; !ok {
		return jadwal.Pengganti{}, jadwal.ErrPenggantiNotFound
	}
	repo.db.pengganti[p.ID] = p
	return p, nil
}
