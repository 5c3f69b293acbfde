package jadwal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/matakuliah"
	"github.com/labasprak/asprak/core/praktikum"
)

func mk(id int64, nama, lengkap, prodi, term string) matakuliah.WithPraktikum {
	return matakuliah.WithPraktikum{
		MataKuliah: matakuliah.MataKuliah{ID: id, NamaLengkap: lengkap, ProgramStudi: prodi},
		Praktikum:  praktikum.Praktikum{Nama: nama, TahunAjaran: term},
	}
}

func TestBuildPreview(t *testing.T) {
	mks := []matakuliah.WithPraktikum{
		mk(1, "ALPRO", "Algoritma Pemrograman", "IF", "2425-1"),
		mk(2, "ALPRO", "Algoritma Pemrograman", "SE", "2425-1"),
		mk(3, "ALPRO", "Algoritma Pemrograman PJJ", "IF-PJJ", "2425-1"),
		mk(4, "PBO", "Pemrograman Berorientasi Objek", "IT", "2425-1"),
		mk(5, "ALPRO", "Algoritma Pemrograman", "IF", "2324-2"),
	}
	records := []core.Record{
		{"Nama Singkat": "alpro", "Kelas": "SE-01", "Hari": "senin", "Sesi": "1", "Jam": "06:30", "Ruangan": "TULT 0604 & TULT 0605"},
		{"nama_singkat": "ALPRO", "kelas": "PJJ-01", "hari": "SELASA", "sesi": "0"},
		{"nama_singkat": "Pemrograman Berorientasi Objek", "kelas": "DS-01", "hari": "RABU", "sesi": "2"},
		{"nama_singkat": "JARKOM", "kelas": "IF-01", "hari": "RABU", "sesi": "2"},
		{"nama_singkat": "ALPRO", "kelas": "IF-02", "hari": "MINGGU", "sesi": "2"},
		{"nama_singkat": "ALPRO", "kelas": "IF-03", "hari": "KAMIS", "sesi": "0"},
	}

	rows := BuildPreview(records, mks, "2425-1")
	require.Len(t, rows, 6)

	assert.Equal(t, int64(2), rows[0].IDMK)
	assert.Equal(t, "SENIN", rows[0].Hari)
	assert.Equal(t, "TULT 0604", rows[0].Ruangan)
	assert.Equal(t, StatusOK, rows[0].Status)
	assert.True(t, rows[0].FromSystemLogic)
	assert.Equal(t, 2, rows[0].OriginalRow)

	assert.Equal(t, int64(3), rows[1].IDMK, "PJJ classes fall back to IF-PJJ")
	assert.Equal(t, StatusOK, rows[1].Status, "PJJ classes may have no sesi")

	assert.Equal(t, int64(4), rows[2].IDMK, "unknown prodi falls back through IF, SE, IT, DS")
	assert.Equal(t, "Pemrograman Berorientasi Objek", rows[2].MKName)

	assert.Equal(t, StatusError, rows[3].Status)
	assert.Equal(t, `Mata Kuliah "JARKOM" tidak ditemukan.`, rows[3].StatusMessage)
	assert.False(t, rows[3].FromSystemLogic)

	assert.Equal(t, int64(1), rows[4].IDMK)
	assert.Equal(t, `Hari "MINGGU" tidak valid.`, rows[4].StatusMessage)

	assert.Equal(t, "Sesi harus > 0 (Kecuali PJJ)", rows[5].StatusMessage)
	assert.False(t, rows[5].Selected)
	assert.Equal(t, 7, rows[5].OriginalRow)
}

func TestValidateConflicts(t *testing.T) {
	stored := []WithMataKuliah{
		{
			Jadwal:     Jadwal{IDMK: 1, Kelas: "IF-01", Hari: "SENIN", Sesi: 1, Jam: "06:30", Ruangan: "TULT 0604"},
			MataKuliah: MKInfo{NamaLengkap: "Algoritma Pemrograman"},
		},
		{Jadwal: Jadwal{IDMK: 3, Kelas: "IF-PJJ-01", Hari: "SELASA", Sesi: 1, Jam: "06:30", Ruangan: "TULT 0705"}},
	}
	ok := func(idmk int64, kelas, hari string, sesi int, jam, ruangan string, line int) PreviewRow {
		return PreviewRow{IDMK: idmk, Kelas: kelas, Hari: hari, Sesi: sesi, Jam: jam, Ruangan: ruangan,
			Status: StatusOK, Selected: true, OriginalRow: line}
	}
	rows := []PreviewRow{
		ok(1, "IF-01", "SENIN", 1, "06:30", "TULT 0604", 2),
		ok(2, "SE-01", "SENIN", 1, "06:30", "TULT 0604", 3),
		ok(2, "SE-02", "RABU", 2, "09:30", "TULT 0617", 4),
		ok(2, "SE-03", "RABU", 2, "09:30", "TULT 0617", 5),
		ok(3, "IF-PJJ-02", "RABU", 2, "09:30", "TULT 0617", 6),
		ok(2, "SE-04", "SELASA", 1, "06:30", "TULT 0705", 7),
		ok(2, "SE-05", "KAMIS", 1, "06:30", "", 8),
		{Kelas: "XX", Status: StatusError, StatusMessage: "kept"},
	}

	out := ValidateConflicts(rows, stored)
	require.Len(t, out, len(rows))

	assert.Equal(t, "Duplikat: Jadwal ini sudah ada di database.", out[0].StatusMessage)
	assert.Equal(t, "Tabrakan Internal CSV (Baris 2, 3)", out[1].StatusMessage)
	assert.Equal(t, "Tabrakan Internal CSV (Baris 4, 5)", out[2].StatusMessage)
	assert.Equal(t, "Tabrakan Internal CSV (Baris 4, 5)", out[3].StatusMessage)
	assert.Equal(t, StatusOK, out[4].Status, "PJJ rows never collide")
	assert.Equal(t, StatusOK, out[5].Status, "stored PJJ rows never collide")
	assert.Equal(t, StatusOK, out[6].Status)
	assert.Equal(t, "kept", out[7].StatusMessage)
	assert.Equal(t, StatusOK, rows[1].Status, "input rows must not be modified")

	single := ValidateConflicts([]PreviewRow{ok(2, "SE-01", "SENIN", 1, "06:30", "TULT 0604", 2)}, stored)
	assert.Equal(t, "Tabrakan Database: Ruangan TULT 0604 dipakai Algoritma Pemrograman (IF-01)", single[0].StatusMessage)
	assert.False(t, single[0].Selected)
}
