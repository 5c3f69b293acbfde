package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffNama Lengkap,NIM,Angkatan\n" +
		"Budi Santoso, 1301, 21\n" +
		",,\n" +
		"Siti,1302\n"

	records, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Budi Santoso", records[0].Get("nama_lengkap"))
	assert.Equal(t, "1301", records[0].Get("nim"))
	assert.Equal(t, 21, records[0].Int("angkatan"))
	assert.Equal(t, "", records[1].Get("angkatan"))
}

func TestReadRecordsUnsupported(t *testing.T) {
	_, err := ReadRecords("data.pdf", strings.NewReader(""))
	assert.Equal(t, ErrUnsupportedFormat, err)
}

func TestWorkbookRoundTrip(t *testing.T) {
	tables := []core.Table{
		{
			Name:    "Praktikum",
			Columns: []string{"nama_singkat", "tahun_ajaran"},
			Widths:  []float64{20, 14},
			Rows:    [][]interface{}{{"ALPRO", "2425-1"}, {"BASDAT", "2425-1"}},
		},
		{
			Name:    "jadwal",
			Columns: []string{"kelas", "sesi"},
			Rows:    [][]interface{}{{"IF-01", 2}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, tables...))

	wb, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, wb, 2)
	require.Len(t, wb["praktikum"], 2)
	assert.Equal(t, "BASDAT", wb["praktikum"][1].Get("nama_singkat"))
	require.Len(t, wb["jadwal"], 1)
	assert.Equal(t, 2, wb["jadwal"][0].Int("sesi"))

	records, err := ReadRecords("export.XLSX", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWriteWorkbookEmpty(t *testing.T) {
	assert.Error(t, WriteWorkbook(&bytes.Buffer{}))
}
