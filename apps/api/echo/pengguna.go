package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/pengguna"
)

func (s *Server) registerPenggunaAPI(authed *echo.Group) {
	g := authed.Group("/admin/users", s.adminOnly())
	g.GET("", s.listPengguna)
	g.POST("", s.createPengguna)
	g.GET("/assignments", s.penggunaAssignments)
	g.PATCH("/:id", s.updatePengguna)
	g.DELETE("/:id", s.deletePengguna)
	g.PUT("/:id/assignments", s.setPenggunaAssignments)
}

type SetAssignmentsRequest struct {
	PraktikumIDs []string `json:"praktikum_ids"`
}

func (s *Server) listPengguna(ctx echo.Context) error {
	ps, err := s.PenggunaSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pengguna")
	}
	return respond(ctx, http.StatusOK, ps)
}

func (s *Server) createPengguna(ctx echo.Context) error {
	var data pengguna.NewPengguna
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPengguna")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	p, err := s.PenggunaSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	s.audit(ctx, "pengguna", p.ID, auditlog.ActionCreate, map[string]string{
		"email": p.Email, "nama_lengkap": p.NamaLengkap, "role": p.Role,
	})
	return respond(ctx, http.StatusCreated, p)
}

func (s *Server) updatePengguna(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	orig, err := s.PenggunaSvc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data pengguna.UpdatePengguna
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePengguna")
	}
	if err = data.Validate(orig, s.Validate); err != nil {
		return err
	}

	p, err := s.PenggunaSvc.Update(rctx, orig.ID, data)
	if err != nil {
		return err
	}
	s.audit(ctx, "pengguna", p.ID, auditlog.ActionUpdate, map[string]interface{}{
		"nama_lengkap": data.NamaLengkap, "role": data.Role, "is_active": data.IsActive,
		"password_changed": data.Password != "",
	})
	return respond(ctx, http.StatusOK, p)
}

func (s *Server) deletePengguna(ctx echo.Context) error {
	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	if id == claims.Subject {
		return errDeleteSelf
	}

	rctx := ctx.Request().Context()
	p, err := s.PenggunaSvc.GetByID(rctx, id)
	if err != nil {
		return err
	}
	if err = s.PenggunaSvc.Delete(rctx, p.ID); err != nil {
		return errors.Wrap(err, "deleting pengguna")
	}
	s.audit(ctx, "pengguna", p.ID, auditlog.ActionDelete, map[string]string{"email": p.Email})
	return respondMessage(ctx, http.StatusOK, "Pengguna dihapus")
}

func (s *Server) penggunaAssignments(ctx echo.Context) error {
	id := ctx.QueryParam("id_pengguna")
	if id == "" {
		return core.NewValidationError(errors.New("id_pengguna diperlukan."))
	}
	as, err := s.PenggunaSvc.Assignments(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return respond(ctx, http.StatusOK, as)
}

func (s *Server) setPenggunaAssignments(ctx echo.Context) error {
	var data SetAssignmentsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetAssignmentsRequest")
	}

	id := ctx.Param("id")
	as, err := s.PenggunaSvc.SetAssignments(ctx.Request().Context(), id, data.PraktikumIDs)
	if err != nil {
		return err
	}
	s.audit(ctx, "asprak_koordinator", id, auditlog.ActionUpdate, data)
	return respond(ctx, http.StatusOK, as)
}
