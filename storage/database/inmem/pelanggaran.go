package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/labasprak/asprak/core/pelanggaran"
)

type pelanggaranRepository struct {
	db *DB
}

var _ pelanggaran.Repository = (*pelanggaranRepository)(nil) // interface compliance check

func NewPelanggaranRepository(db *DB) *pelanggaranRepository {
	return &pelanggaranRepository{db: db}
}

func (repo *pelanggaranRepository) detail(p pelanggaran.Pelanggaran) pelanggaran.Detail {
	a := repo.db.asprak[p.IDAsprak]
	j := repo.db.jadwal[p.IDJadwal]
	mk := repo.db.mataKuliah[j.IDMK]
	return pelanggaran.Detail{
		Pelanggaran: p,
		Asprak:      pelanggaran.AsprakInfo{NamaLengkap: a.NamaLengkap, NIM: a.NIM, Kode: a.Kode},
		Jadwal: pelanggaran.JadwalInfo{
			Hari:  j.Hari,
			Jam:   j.Jam,
			Kelas: j.Kelas,
			MataKuliah: pelanggaran.MataKuliahInfo{
				ID:           mk.ID,
				IDPraktikum:  mk.IDPraktikum,
				NamaLengkap:  mk.NamaLengkap,
				ProgramStudi: mk.ProgramStudi,
			},
		},
	}
}

func (repo *pelanggaranRepository) Query(_ context.Context, f pelanggaran.Filter) ([]pelanggaran.Detail, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var allowed map[string]bool
	if f.PraktikumIDs != nil {
		allowed = make(map[string]bool, len(f.PraktikumIDs))
		for _, id := range f.PraktikumIDs {
			allowed[id] = true
		}
	}

	out := make([]pelanggaran.Detail, 0)
	for _, p := range repo.db.pelanggaran {
		d := repo.detail(p)
		if f.IDMK != 0 && d.Jadwal.MataKuliah.ID != f.IDMK {
			continue
		}
		if allowed != nil && !allowed[d.Jadwal.MataKuliah.IDPraktikum] {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (repo *pelanggaranRepository) GetByID(_ context.Context, id int64) (pelanggaran.Pelanggaran, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.pelanggaran[id]; ok {
		return p, nil
	}
	return pelanggaran.Pelanggaran{}, pelanggaran.ErrNotFound
}

func (repo *pelanggaranRepository) Create(_ context.Context, p pelanggaran.Pelanggaran) (pelanggaran.Pelanggaran, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.asprak[p.IDAsprak]; !ok {
		return pelanggaran.Pelanggaran{}, errForeignKey("pelanggaran", "id_asprak")
	}
	if _, ok := repo.db.jadwal[p.IDJadwal]; !ok {
		return pelanggaran.Pelanggaran{}, errForeignKey("pelanggaran", "id_jadwal")
	}
	p.ID = repo.db.nextID()
	repo.db.pelanggaran[p.ID] = p
	return p, nil
}

func (repo *pelanggaranRepository) FinalizeByMataKuliah(_ context.Context, idMK int64, at time.Time) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	at = at.UTC()
	n := 0
	for id, p := range repo.db.pelanggaran {
		if p.IsFinal || repo.db.jadwal[p.IDJadwal].IDMK != idMK {
			continue
		}
		finalizedAt := at
		p.IsFinal, p.FinalizedAt = true, &finalizedAt
		repo.db.pelanggaran[id] = p
		n++
	}
	return n, nil
}

func (repo *pelanggaranRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.pelanggaran[id]; !ok {
		return pelanggaran.ErrNotFound
	}
	delete(repo.db.pelanggaran, id)
	return nil
}

func (repo *pelanggaranRepository) QueryExport(_ context.Context, idPraktikum, tahunAjaran string) ([]pelanggaran.ExportRow, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	type exportRow struct {
		pelanggaran.ExportRow
		createdAt time.Time
	}
	rows := make([]exportRow, 0)
	for _, p := range repo.db.pelanggaran {
		mk, pr := repo.db.praktikumOfJadwal(p.IDJadwal)
		if (idPraktikum != "" && pr.ID != idPraktikum) || (tahunAjaran != "" && pr.TahunAjaran != tahunAjaran) {
			continue
		}
		rows = append(rows, exportRow{
			ExportRow: pelanggaran.ExportRow{
				IDPraktikum: pr.ID,
				MK:          mk.NamaLengkap,
				Kode:        repo.db.asprak[p.IDAsprak].Kode,
				Modul:       p.Modul,
				Kelas:       repo.db.jadwal[p.IDJadwal].Kelas,
				Jenis:       p.Jenis,
			},
			createdAt: p.CreatedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.MK != b.MK:
			return a.MK < b.MK
		case a.Kelas != b.Kelas:
			return a.Kelas < b.Kelas
		case a.Kode != b.Kode:
			return a.Kode < b.Kode
		}
		return a.createdAt.Before(b.createdAt)
	})

	out := make([]pelanggaran.ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ExportRow)
	}
	return out, nil
}
