package inmemdb

import (
	"context"
	"sort"

	"github.com/labasprak/asprak/core/plotting"
)

type plottingRepository struct {
	db *DB
}

var _ plotting.Repository = (*plottingRepository)(nil) // interface compliance check

func NewPlottingRepository(db *DB) *plottingRepository {
	return &plottingRepository{db: db}
}

func (repo *plottingRepository) Query(_ context.Context, f plotting.ListFilter) ([]plotting.Item, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]plotting.Item, 0, len(repo.db.links))
	for _, l := range repo.db.links {
		p := repo.db.praktikum[l.praktikumID]
		if !inTerm(p, f.Term) || (f.PraktikumID != "" && p.ID != f.PraktikumID) {
			continue
		}
		a := repo.db.asprak[l.asprakID]
		items = append(items, plotting.Item{
			ID:        l.id,
			Asprak:    plotting.AsprakInfo{ID: a.ID, Kode: a.Kode, NamaLengkap: a.NamaLengkap, NIM: a.NIM, Angkatan: a.Angkatan},
			Praktikum: plotting.PraktikumInfo{ID: p.ID, Nama: p.Nama, TahunAjaran: p.TahunAjaran},
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Praktikum.Nama != b.Praktikum.Nama {
			return a.Praktikum.Nama < b.Praktikum.Nama
		}
		if a.Asprak.Kode != b.Asprak.Kode {
			return a.Asprak.Kode < b.Asprak.Kode
		}
		return a.ID < b.ID
	})

	start, end := f.Page.Window(len(items))
	return items[start:end], len(items), nil
}

// link stores a pair unless present; callers hold the write lock.
func (repo *plottingRepository) link(asprakID, praktikumID string) (int, bool, error) {
	for _, l := range repo.db.links {
		if l.asprakID == asprakID && l.praktikumID == praktikumID {
			return l.id, false, nil
		}
	}
	if _, ok := repo.db.asprak[asprakID]; !ok {
		return 0, false, errForeignKey("asprak_praktikum", "id_asprak")
	}
	if _, ok := repo.db.praktikum[praktikumID]; !ok {
		return 0, false, errForeignKey("asprak_praktikum", "id_praktikum")
	}
	id := int(repo.db.nextID())
	repo.db.links[id] = link{id: id, asprakID: asprakID, praktikumID: praktikumID}
	return id, true, nil
}

func (repo *plottingRepository) Link(_ context.Context, asprakID, praktikumID string) (int, bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.link(asprakID, praktikumID)
}

func (repo *plottingRepository) LinkMany(_ context.Context, as []plotting.Assignment) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var created []int
	for _, a := range as {
		id, ok, err := repo.link(a.AsprakID, a.PraktikumID)
		if err != nil {
			for _, id := range created {
				delete(repo.db.links, id)
			}
			return 0, err
		}
		if ok {
			created = append(created, id)
		}
	}
	return len(created), nil
}

func (repo *plottingRepository) Delete(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.links[id]; !ok {
		return plotting.ErrNotFound
	}
	delete(repo.db.links, id)
	return nil
}
