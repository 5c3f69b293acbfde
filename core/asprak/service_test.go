package asprak_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/tests"
)

func TestService_Upsert(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	active := time.Now().Year() - 1

	id, created, err := st.Asprak.Upsert(ctx, asprak.UpsertAsprak{
		NIM: "1302", NamaLengkap: "BUDI SANTOSO", Kode: "BUS", Angkatan: active, Term: "2425-1", PraktikumNames: []string{"ALPRO"},
	})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := st.Asprak.Upsert(ctx, asprak.UpsertAsprak{
		NIM: "1302", NamaLengkap: "BUDI S", Kode: "BSA", Angkatan: active, Term: "2425-1",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	budi, err := st.AsprakRepo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "BSA", budi.Kode)
	assert.Equal(t, "BUDI S", budi.NamaLengkap)

	as, err := st.Asprak.Assignments(ctx, id)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "ALPRO", as[0].Nama)
}
