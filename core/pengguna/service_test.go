package pengguna_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/pengguna"
	"github.com/labasprak/asprak/core/rbac"
	emailsvc "github.com/labasprak/asprak/services/email"
	"github.com/labasprak/asprak/tests"
)

func TestService_Create(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	emailsvc.ResetSentMessages()

	p, err := st.Pengguna.Create(ctx, pengguna.NewPengguna{
		NamaLengkap: "Sari Aslab",
		Email:       "sari@lab.test",
		Password:    "Str0ng-passw0rd",
		Role:        rbac.RoleAslab,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.IsActive)
	assert.NoError(t, p.CheckPassword("Str0ng-passw0rd"))

	require.Len(t, emailsvc.SentMessages, 1)
	assert.Equal(t, "sari@lab.test", emailsvc.SentMessages[0].To[0].Address)
	assert.Contains(t, emailsvc.SentMessages[0].TextContent, rbac.RoleAslab)

	got, err := st.Pengguna.GetByEmail(ctx, " SARI@lab.test")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = st.Pengguna.Create(ctx, pengguna.NewPengguna{
		NamaLengkap: "Sari Lain",
		Email:       "sari@lab.test",
		Password:    "Str0ng-passw0rd",
		Role:        rbac.RoleAdmin,
	})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []core.FieldError{{Field: "email", Error: pengguna.ErrEmailExists.Error()}}, verr.Fields)
}

func TestService_Update(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	p := testutil.CreatePengguna(t, st.PenggunaRepo, "Koor", "koor@lab.test", "old-passw0rd", rbac.RoleAsprakKoor, true)

	role := rbac.RoleAslab
	inactive := false
	updated, err := st.Pengguna.Update(ctx, p.ID, pengguna.UpdatePengguna{Role: &role, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Koor", updated.NamaLengkap)
	assert.Equal(t, rbac.RoleAslab, updated.Role)
	assert.False(t, updated.IsActive)
	assert.NoError(t, updated.CheckPassword("old-passw0rd"))

	updated, err = st.Pengguna.SetPassword(ctx, "KOOR@lab.test", "new-passw0rd")
	require.NoError(t, err)
	assert.NoError(t, updated.CheckPassword("new-passw0rd"))

	_, err = st.Pengguna.Update(ctx, "4a3e4f0e-0000-4000-8000-000000000000", pengguna.UpdatePengguna{Role: &role})
	assert.True(t, core.IsNotFound(err))

	require.NoError(t, st.Pengguna.Delete(ctx, p.ID))
	_, err = st.Pengguna.GetByID(ctx, p.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestService_Assignments(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	koor := testutil.CreatePengguna(t, st.PenggunaRepo, "Koor", "koor@lab.test", "passw0rd-koor", rbac.RoleAsprakKoor, true)
	alpro := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	strukdat := testutil.CreatePraktikum(t, st.PraktikumRepo, "STRUKDAT", "2425-1")

	as, err := st.Pengguna.Assignments(ctx, koor.ID)
	require.NoError(t, err)
	assert.NotNil(t, as)
	assert.Empty(t, as)

	as, err = st.Pengguna.SetAssignments(ctx, koor.ID, []string{alpro.ID, strukdat.ID, alpro.ID})
	require.NoError(t, err)
	assert.Len(t, as, 2)

	as, err = st.Pengguna.SetAssignments(ctx, koor.ID, []string{strukdat.ID})
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "STRUKDAT", as[0].NamaPraktikum)
	assert.Equal(t, "2425-1", as[0].TahunAjaran)

	ids, err := st.Pengguna.ActivePraktikumIDs(ctx, koor.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{strukdat.ID}, ids)

	_, err = st.Pengguna.SetAssignments(ctx, "4a3e4f0e-0000-4000-8000-000000000000", []string{alpro.ID})
	assert.True(t, core.IsNotFound(err))
}

func TestService_PasswordReset(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	p := testutil.CreatePengguna(t, st.PenggunaRepo, "Aslab", "aslab@lab.test", "old-passw0rd", rbac.RoleAslab, true)
	testutil.CreatePengguna(t, st.PenggunaRepo, "Retired", "retired@lab.test", "old-passw0rd", rbac.RoleAslab, false)
	emailsvc.ResetSentMessages()

	assert.True(t, core.IsNotFound(st.Pengguna.RequestPasswordReset(ctx, "nobody@lab.test")))
	assert.True(t, core.IsNotFound(st.Pengguna.RequestPasswordReset(ctx, "retired@lab.test")))
	assert.Empty(t, emailsvc.SentMessages)

	require.NoError(t, st.Pengguna.RequestPasswordReset(ctx, "Aslab@lab.test"))
	require.Len(t, emailsvc.SentMessages, 1)
	data, ok := emailsvc.SentMessages[0].TemplateData.(map[string]string)
	require.True(t, ok)

	tests := []struct {
		name      string
		rp        pengguna.ResetPassword
		wantField string
	}{
		{name: "bad uid", rp: pengguna.ResetPassword{UID: "!!", Token: data["Token"]}, wantField: "uid"},
		{name: "unknown uid", rp: pengguna.ResetPassword{UID: "bG9s", Token: data["Token"]}, wantField: "uid"},
		{name: "bad token", rp: pengguna.ResetPassword{UID: data["UID"], Token: "abc-def"}, wantField: "token"},
		{name: "ok", rp: pengguna.ResetPassword{UID: data["UID"], Token: data["Token"]}},
		{name: "token used", rp: pengguna.ResetPassword{UID: data["UID"], Token: data["Token"]}, wantField: "token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rp.Password = "N3w-passw0rd!"
			tt.rp.PasswordConfirm = tt.rp.Password
			err := st.Pengguna.ResetPassword(ctx, tt.rp)
			if tt.wantField == "" {
				require.NoError(t, err)
				refreshed, err := st.Pengguna.GetByID(ctx, p.ID)
				require.NoError(t, err)
				assert.NoError(t, refreshed.CheckPassword("N3w-passw0rd!"))
				return
			}
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}
}
