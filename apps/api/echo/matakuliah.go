package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/matakuliah"
)

func (s *Server) registerMataKuliahAPI(authed *echo.Group) {
	g := authed.Group("/mata-kuliah")
	g.GET("", s.mataKuliahByTerm, s.anyRole())
	g.GET("/exists", s.mataKuliahExists, s.anyRole())

	staff := s.staffOnly()
	g.POST("", s.createMataKuliah, staff)
	g.POST("/bulk", s.bulkCreateMataKuliah, staff)
	g.POST("/import/preview", s.previewMataKuliah, staff, s.uploadLimit())
	g.PUT("/colors", s.updateMataKuliahColors, staff)
	g.PUT("/colors/by-praktikum", s.updateMataKuliahColorByPraktikum, staff)
}

type (
	CreateMataKuliahRequest struct {
		Data matakuliah.NewMataKuliah `json:"data"`
		Term string                   `json:"term"`
	}

	BulkMataKuliahRequest struct {
		Data []matakuliah.NewMataKuliah `json:"data"`
		Term string                     `json:"term"`
	}

	ColorsRequest struct {
		Data []matakuliah.ColorUpdate `json:"data"`
	}

	ExistsResponse struct {
		Exists bool `json:"exists"`
	}

	UpdatedResponse struct {
		Updated int `json:"updated"`
	}
)

func (s *Server) mataKuliahByTerm(ctx echo.Context) error {
	groups, err := s.MataKuliahSvc.ByTerm(ctx.Request().Context(), ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, groups)
}

func (s *Server) mataKuliahExists(ctx echo.Context) error {
	idPraktikum, prodi := ctx.QueryParam("id_praktikum"), ctx.QueryParam("program_studi")
	if idPraktikum == "" || prodi == "" {
		return core.NewValidationError(errors.New("id_praktikum dan program_studi diperlukan."))
	}
	ok, err := s.MataKuliahSvc.Exists(ctx.Request().Context(), idPraktikum, prodi)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, ExistsResponse{Exists: ok})
}

func (s *Server) createMataKuliah(ctx echo.Context) error {
	var data CreateMataKuliahRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CreateMataKuliahRequest")
	}
	if err := data.Data.Validate(s.Validate); err != nil {
		return err
	}

	mk, err := s.MataKuliahSvc.Create(ctx.Request().Context(), data.Data, core.CleanString(data.Term))
	if err != nil {
		return err
	}
	s.audit(ctx, "mata_kuliah", strconv.FormatInt(mk.ID, 10), auditlog.ActionCreate, mk)
	return respond(ctx, http.StatusCreated, mk)
}

func (s *Server) bulkCreateMataKuliah(ctx echo.Context) error {
	var data BulkMataKuliahRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkMataKuliahRequest")
	}

	rows := make([]matakuliah.NewMataKuliah, 0, len(data.Data))
	var invalid []string
	for i := range data.Data {
		if err := data.Data[i].Validate(s.Validate); err != nil {
			invalid = append(invalid, fmt.Sprintf("Failed to prepare %s: %v", data.Data[i].MKSingkat, err))
			continue
		}
		rows = append(rows, data.Data[i])
	}

	res := s.MataKuliahSvc.BulkCreate(ctx.Request().Context(), rows, core.CleanString(data.Term))
	res.Errors = append(invalid, res.Errors...)
	if res.Errors == nil {
		res.Errors = []string{}
	}
	s.audit(ctx, "mata_kuliah", "BULK", auditlog.ActionImport, map[string]int{"count": res.Inserted})
	return respond(ctx, http.StatusOK, res)
}

func (s *Server) previewMataKuliah(ctx echo.Context) error {
	pr, records, err := bindPreview(ctx)
	if err != nil {
		return err
	}
	rows, err := s.MataKuliahSvc.Preview(ctx.Request().Context(), records, core.CleanString(pr.Term))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rows)
}

func (s *Server) updateMataKuliahColors(ctx echo.Context) error {
	var data ColorsRequest
	if err := ctx.Bind(&data); err != nil {
		return core.NewValidationError(errors.New("Invalid data format"))
	}
	res := s.MataKuliahSvc.UpdateColors(ctx.Request().Context(), data.Data)
	return respond(ctx, http.StatusOK, res)
}

func (s *Server) updateMataKuliahColorByPraktikum(ctx echo.Context) error {
	var data matakuliah.PraktikumColor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PraktikumColor")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	n, err := s.MataKuliahSvc.UpdateColorByPraktikumName(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, UpdatedResponse{Updated: n})
}
