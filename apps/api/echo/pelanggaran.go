package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/pelanggaran"
	"github.com/labasprak/asprak/services/spreadsheet"
)

func (s *Server) registerPelanggaranAPI(authed *echo.Group) {
	g := authed.Group("/pelanggaran", s.anyRole())
	g.GET("", s.listPelanggaran)
	g.GET("/mata-kuliah/:id", s.pelanggaranByMataKuliah)
	g.GET("/export", s.exportPelanggaran)
	g.POST("", s.createPelanggaran)
	g.POST("/finalize", s.finalizePelanggaran)
	g.DELETE("/:id", s.deletePelanggaran)
}

type FinalizedResponse struct {
	Finalized int `json:"finalized"`
}

func (s *Server) listPelanggaran(ctx echo.Context) error {
	scope, err := s.pelanggaranScope(ctx)
	if err != nil {
		return err
	}
	ps, err := s.PelanggaranSvc.Query(ctx.Request().Context(), scope)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, ps)
}

func (s *Server) pelanggaranByMataKuliah(ctx echo.Context) error {
	idMK, err := paramInt64(ctx, "id")
	if err != nil {
		return err
	}
	scope, err := s.pelanggaranScope(ctx)
	if err != nil {
		return err
	}
	ps, err := s.PelanggaranSvc.ByMataKuliah(ctx.Request().Context(), scope, idMK)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, ps)
}

func (s *Server) createPelanggaran(ctx echo.Context) error {
	var data pelanggaran.NewPelanggaran
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPelanggaran")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}
	scope, err := s.pelanggaranScope(ctx)
	if err != nil {
		return err
	}

	p, err := s.PelanggaranSvc.Create(ctx.Request().Context(), scope, data)
	if err != nil {
		return err
	}
	s.audit(ctx, "pelanggaran", strconv.FormatInt(p.ID, 10), auditlog.ActionCreate, data)
	return respond(ctx, http.StatusCreated, p)
}

func (s *Server) finalizePelanggaran(ctx echo.Context) error {
	var data pelanggaran.FinalizeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FinalizeRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}
	scope, err := s.pelanggaranScope(ctx)
	if err != nil {
		return err
	}

	n, err := s.PelanggaranSvc.Finalize(ctx.Request().Context(), scope, data.IDMK)
	if err != nil {
		return err
	}
	s.audit(ctx, "pelanggaran", strconv.FormatInt(data.IDMK, 10), auditlog.ActionUpdate, map[string]interface{}{
		"finalized": n, "id_mk": data.IDMK,
	})
	return respond(ctx, http.StatusOK, FinalizedResponse{Finalized: n})
}

func (s *Server) deletePelanggaran(ctx echo.Context) error {
	id, err := paramInt64(ctx, "id")
	if err != nil {
		return err
	}
	scope, err := s.pelanggaranScope(ctx)
	if err != nil {
		return err
	}

	if err = s.PelanggaranSvc.Delete(ctx.Request().Context(), scope, id); err != nil {
		return err
	}
	s.audit(ctx, "pelanggaran", strconv.FormatInt(id, 10), auditlog.ActionDelete, nil)
	return respondMessage(ctx, http.StatusOK, "Pelanggaran dihapus")
}

func (s *Server) exportPelanggaran(ctx echo.Context) error {
	scope, err := s.pelanggaranScope(ctx)
	if err != nil {
		return err
	}
	tahunAjaran := ctx.QueryParam("tahun_ajaran")
	table, err := s.PelanggaranSvc.Export(ctx.Request().Context(), scope, ctx.QueryParam("id_praktikum"), tahunAjaran)
	if err != nil {
		return err
	}

	attachment(ctx, spreadsheet.ContentTypeXLSX, pelanggaran.ExportFileName(tahunAjaran))
	ctx.Response().WriteHeader(http.StatusOK)
	return spreadsheet.WriteWorkbook(ctx.Response(), table)
}
