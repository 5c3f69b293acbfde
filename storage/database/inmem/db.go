package inmemdb

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/jadwal"
	"github.com/labasprak/asprak/core/matakuliah"
	"github.com/labasprak/asprak/core/pelanggaran"
	"github.com/labasprak/asprak/core/pengguna"
	"github.com/labasprak/asprak/core/praktikum"
	"github.com/labasprak/asprak/core/system"
)

type link struct {
	id          int
	asprakID    string
	praktikumID string
}

type koordinator struct {
	penggunaID  string
	praktikumID string
	active      bool
}

// DB keeps every table in memory behind one lock. Deletes cascade the way the SQL schema does.
type DB struct {
	mutex sync.RWMutex
	seq   int64

	pengguna    map[string]pengguna.Pengguna
	koordinator []koordinator
	praktikum   map[string]praktikum.Praktikum
	mataKuliah  map[int64]matakuliah.MataKuliah
	asprak      map[string]asprak.Asprak
	links       map[int]link
	jadwal      map[int64]jadwal.Jadwal
	pengganti   map[string]jadwal.Pengganti
	pelanggaran map[int64]pelanggaran.Pelanggaran
	auditLog    []auditlog.Entry
	system      map[string]system.Config
}

func NewDB() *DB {
	return &DB{
		pengguna:    make(map[string]pengguna.Pengguna),
		praktikum:   make(map[string]praktikum.Praktikum),
		mataKuliah:  make(map[int64]matakuliah.MataKuliah),
		asprak:      make(map[string]asprak.Asprak),
		links:       make(map[int]link),
		jadwal:      make(map[int64]jadwal.Jadwal),
		pengganti:   make(map[string]jadwal.Pengganti),
		pelanggaran: make(map[int64]pelanggaran.Pelanggaran),
		system:      make(map[string]system.Config),
	}
}

// nextID returns the next serial; callers hold the write lock.
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

// The delete helpers below expect the write lock to be held.

func (db *DB) deletePelanggaran(match func(p pelanggaran.Pelanggaran) bool) {
	for id, p := range db.pelanggaran {
		if match(p) {
			delete(db.pelanggaran, id)
		}
	}
}

func (db *DB) deleteJadwal(ids ...int64) {
	gone := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := db.jadwal[id]; ok {
			gone[id] = true
			delete(db.jadwal, id)
		}
	}
	for id, p := range db.pengganti {
		if gone[p.IDJadwal] {
			delete(db.pengganti, id)
		}
	}
	db.deletePelanggaran(func(p pelanggaran.Pelanggaran) bool { return gone[p.IDJadwal] })
}

func (db *DB) deleteMataKuliah(ids ...int64) {
	gone := make(map[int64]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		delete(db.mataKuliah, id)
	}
	var jadwalIDs []int64
	for id, j := range db.jadwal {
		if gone[j.IDMK] {
			jadwalIDs = append(jadwalIDs, id)
		}
	}
	db.deleteJadwal(jadwalIDs...)
}

func (db *DB) deletePraktikum(ids ...string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		delete(db.praktikum, id)
	}
	var mkIDs []int64
	for id, mk := range db.mataKuliah {
		if gone[mk.IDPraktikum] {
			mkIDs = append(mkIDs, id)
		}
	}
	db.deleteMataKuliah(mkIDs...)
	for id, l := range db.links {
		if gone[l.praktikumID] {
			delete(db.links, id)
		}
	}
	kept := db.koordinator[:0]
	for _, k := range db.koordinator {
		if !gone[k.praktikumID] {
			kept = append(kept, k)
		}
	}
	db.koordinator = kept
}

func (db *DB) deleteAsprak(ids ...string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
		delete(db.asprak, id)
	}
	for id, l := range db.links {
		if gone[l.asprakID] {
			delete(db.links, id)
		}
	}
	db.deletePelanggaran(func(p pelanggaran.Pelanggaran) bool { return gone[p.IDAsprak] })
}

// praktikumOfMataKuliah returns the praktikum of a mata kuliah, zero when unknown.
func (db *DB) praktikumOfMataKuliah(idMK int64) praktikum.Praktikum {
	return db.praktikum[db.mataKuliah[idMK].IDPraktikum]
}

// praktikumOfJadwal returns the mata kuliah and praktikum of a jadwal.
func (db *DB) praktikumOfJadwal(idJadwal int64) (matakuliah.MataKuliah, praktikum.Praktikum) {
	mk := db.mataKuliah[db.jadwal[idJadwal].IDMK]
	return mk, db.praktikum[mk.IDPraktikum]
}

func inTerm(p praktikum.Praktikum, term string) bool {
	return term == "" || p.TahunAjaran == term
}

// errUnique mimics a unique constraint violation.
func errUnique(table, columns string) error {
	return errors.Errorf("duplicate key value violates unique constraint on %s (%s)", table, columns)
}

// errForeignKey mimics a foreign key violation.
func errForeignKey(table, column string) error {
	return errors.Errorf("insert or update on %s violates foreign key constraint on %s", table, column)
}
