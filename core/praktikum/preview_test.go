package praktikum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core"
)

func TestValidatePreview(t *testing.T) {
	existing := []Praktikum{{ID: "p1", Nama: "Alpro", TahunAjaran: "2425-1"}}
	records := []core.Record{
		{"nama_singkat": "alpro", "tahun_ajaran": "2425-1"},
		{"nama_singkat": "alpro", "tahun_ajaran": "2425-2"},
		{"Nama Singkat": " ALPRO ", "Tahun Ajaran": "2425-2"},
		{"nama_singkat": "", "nama": "pbo", "tahun_ajaran": "2425-1"},
		{"nama_singkat": " ", "tahun_ajaran": "2425-1"},
		{"nama_singkat": "JARKOM", "tahun_ajaran": ""},
		{"nama_lengkap": "strukdat", "tahun_ajaran": "2425-1"},
	}

	rows := ValidatePreview(records, existing)
	require.Len(t, rows, len(records))

	want := []struct {
		nama   string
		status string
		msg    string
	}{
		{"ALPRO", StatusSkipped, "Sudah ada di database"},
		{"ALPRO", StatusOK, ""},
		{"ALPRO", StatusSkipped, "Duplikat dalam file csv/excel"},
		{"PBO", StatusOK, ""},
		{"", StatusError, "Nama kosong"},
		{"JARKOM", StatusError, "Tahun Ajaran kosong"},
		{"STRUKDAT", StatusOK, ""},
	}
	for i, w := range want {
		assert.Equal(t, w.nama, rows[i].Nama, "row %d", i)
		assert.Equal(t, w.status, rows[i].Status, "row %d", i)
		assert.Equal(t, w.msg, rows[i].StatusMessage, "row %d", i)
		assert.Equal(t, w.status == StatusOK, rows[i].Selected, "row %d", i)
	}

	assert.Empty(t, ValidatePreview(nil, existing))
}
