package inmemdb

import (
	"context"
	"sort"

	"github.com/labasprak/asprak/core/matakuliah"
)

type mataKuliahRepository struct {
	db *DB
}

var _ matakuliah.Repository = (*mataKuliahRepository)(nil) // interface compliance check

func NewMataKuliahRepository(db *DB) *mataKuliahRepository {
	return &mataKuliahRepository{db: db}
}

func (repo *mataKuliahRepository) QueryByTerm(_ context.Context, term string) ([]matakuliah.WithPraktikum, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]matakuliah.WithPraktikum, 0, len(repo.db.mataKuliah))
	for _, mk := range repo.db.mataKuliah {
		p, ok := repo.db.praktikum[mk.IDPraktikum]
		if ok && inTerm(p, term) {
			out = append(out, matakuliah.WithPraktikum{MataKuliah: mk, Praktikum: p})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NamaLengkap != out[j].NamaLengkap {
			return out[i].NamaLengkap < out[j].NamaLengkap
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (repo *mataKuliahRepository) GetByID(_ context.Context, id int64) (matakuliah.MataKuliah, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if mk, ok := repo.db.mataKuliah[id]; ok {
		return mk, nil
	}
	return matakuliah.MataKuliah{}, matakuliah.ErrNotFound
}

func (repo *mataKuliahRepository) find(praktikumID, programStudi string) (matakuliah.MataKuliah, bool) {
	var (
		found matakuliah.MataKuliah
		ok    bool
	)
	for _, mk := range repo.db.mataKuliah {
		if mk.IDPraktikum == praktikumID && mk.ProgramStudi == programStudi && (!ok || mk.ID < found.ID) {
			found, ok = mk, true
		}
	}
	return found, ok
}

func (repo *mataKuliahRepository) GetByPraktikumAndProdi(_ context.Context, praktikumID, programStudi string) (matakuliah.MataKuliah, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if mk, ok := repo.find(praktikumID, programStudi); ok {
		return mk, nil
	}
	return matakuliah.MataKuliah{}, matakuliah.ErrNotFound
}

func (repo *mataKuliahRepository) Create(_ context.Context, mk matakuliah.MataKuliah) (matakuliah.MataKuliah, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.praktikum[mk.IDPraktikum]; !ok {
		return matakuliah.MataKuliah{}, errForeignKey("mata_kuliah", "id_praktikum")
	}
	mk.ID = repo.db.nextID()
	repo.db.mataKuliah[mk.ID] = mk
	return mk, nil
}

func (repo *mataKuliahRepository) Delete(_ context.Context, ids ...int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.deleteMataKuliah(ids...)
	return nil
}

func (repo *mataKuliahRepository) Exists(_ context.Context, praktikumID, programStudi string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.find(praktikumID, programStudi)
	return ok, nil
}

func (repo *mataKuliahRepository) UpdateColor(_ context.Context, id int64, warna string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	mk, ok := repo.db.mataKuliah[id]
	if !ok {
		return matakuliah.ErrNotFound
	}
	mk.Warna = warna
	repo.db.mataKuliah[id] = mk
	return nil
}

func (repo *mataKuliahRepository) UpdateColorByPraktikum(_ context.Context, praktikumIDs []string, warna string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	wanted := make(map[string]bool, len(praktikumIDs))
	for _, id := range praktikumIDs {
		wanted[id] = true
	}
	n := 0
	for id, mk := range repo.db.mataKuliah {
		if wanted[mk.IDPraktikum] {
			mk.Warna = warna
			repo.db.mataKuliah[id] = mk
			n++
		}
	}
	return n, nil
}
