package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/jadwal"
)

const defaultTodayLimit = 5

func (s *Server) registerJadwalAPI(authed *echo.Group) {
	g := authed.Group("/jadwal")
	g.GET("", s.jadwalByTerm, s.anyRole())
	g.GET("/terms", s.jadwalTerms, s.anyRole())
	g.GET("/today", s.todayJadwal, s.anyRole())
	g.GET("/sessions", s.jadwalSessions, s.anyRole())
	g.GET("/pengganti", s.listPengganti, s.anyRole())

	staff := s.staffOnly()
	g.POST("", s.createJadwal, staff)
	g.POST("/bulk", s.bulkCreateJadwal, staff)
	g.POST("/import/preview", s.previewJadwal, staff, s.uploadLimit())
	g.PUT("/pengganti", s.upsertPengganti, staff)
	g.PUT("/:id", s.updateJadwal, staff)
	g.DELETE("", s.deleteManyJadwal, staff)
	g.DELETE("/term/:term", s.deleteJadwalByTerm, staff)
	g.DELETE("/:id", s.deleteJadwal, staff)
}

type (
	BulkJadwalRequest struct {
		Rows []jadwal.NewJadwal `json:"rows"`
	}

	DeleteJadwalRequest struct {
		IDs []int64 `json:"ids"`
	}

	SessionsResponse struct {
		Days     []string                    `json:"days"`
		Rooms    []string                    `json:"rooms"`
		Sessions map[string][]jadwal.Session `json:"sessions"`
	}

	DeletedResponse struct {
		Deleted int `json:"deleted"`
	}
)

func (s *Server) jadwalByTerm(ctx echo.Context) error {
	js, err := s.JadwalSvc.ByTerm(ctx.Request().Context(), ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, js)
}

func (s *Server) jadwalTerms(ctx echo.Context) error {
	terms, err := s.JadwalSvc.Terms(ctx.Request().Context())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, terms)
}

func (s *Server) todayJadwal(ctx echo.Context) error {
	limit := queryInt(ctx, "limit", defaultTodayLimit)
	js, err := s.JadwalSvc.Today(ctx.Request().Context(), limit, ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, js)
}

func (s *Server) jadwalSessions(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, SessionsResponse{
		Days:     core.Days,
		Rooms:    jadwal.Rooms,
		Sessions: jadwal.StaticSessions,
	})
}

func (s *Server) listPengganti(ctx echo.Context) error {
	ps, err := s.JadwalSvc.Pengganti(ctx.Request().Context(), queryInt(ctx, "modul", 0))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, ps)
}

func (s *Server) createJadwal(ctx echo.Context) error {
	var data jadwal.NewJadwal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJadwal")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	j, err := s.JadwalSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	s.audit(ctx, "jadwal", strconv.FormatInt(j.ID, 10), auditlog.ActionCreate, j)
	return respond(ctx, http.StatusCreated, j)
}

func (s *Server) bulkCreateJadwal(ctx echo.Context) error {
	var data BulkJadwalRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkJadwalRequest")
	}
	for i := range data.Rows {
		if err := data.Rows[i].Validate(s.Validate); err != nil {
			return core.NewValidationError(errors.Wrap(err, fmt.Sprintf("Row %d", i+1)))
		}
	}

	res, err := s.JadwalSvc.BulkCreate(ctx.Request().Context(), data.Rows)
	if err != nil {
		return err
	}
	s.audit(ctx, "jadwal", "BULK", auditlog.ActionImport, map[string]int{"count": res.Inserted})
	return respond(ctx, http.StatusOK, res)
}

func (s *Server) previewJadwal(ctx echo.Context) error {
	pr, records, err := bindPreview(ctx)
	if err != nil {
		return err
	}
	rows, err := s.JadwalSvc.Preview(ctx.Request().Context(), records, core.CleanString(pr.Term))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rows)
}

func (s *Server) updateJadwal(ctx echo.Context) error {
	id, err := paramInt64(ctx, "id")
	if err != nil {
		return err
	}
	var data jadwal.UpdateJadwal
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateJadwal")
	}
	if err = data.Validate(s.Validate); err != nil {
		return err
	}

	j, err := s.JadwalSvc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	s.audit(ctx, "jadwal", strconv.FormatInt(j.ID, 10), auditlog.ActionUpdate, data)
	return respond(ctx, http.StatusOK, j)
}

func (s *Server) upsertPengganti(ctx echo.Context) error {
	var data jadwal.UpsertPengganti
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertPengganti")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	p, err := s.JadwalSvc.UpsertPengganti(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	s.audit(ctx, "jadwal_pengganti", p.ID, auditlog.ActionUpdate, data)
	return respond(ctx, http.StatusOK, p)
}

func (s *Server) deleteJadwal(ctx echo.Context) error {
	id, err := paramInt64(ctx, "id")
	if err != nil {
		return err
	}
	if err = s.JadwalSvc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	s.audit(ctx, "jadwal", strconv.FormatInt(id, 10), auditlog.ActionDelete, nil)
	return respondMessage(ctx, http.StatusOK, "Jadwal dihapus")
}

func (s *Server) deleteManyJadwal(ctx echo.Context) error {
	var data DeleteJadwalRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteJadwalRequest")
	}
	if len(data.IDs) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "ids", Error: "this field is required"})
	}

	if err := s.JadwalSvc.DeleteMany(ctx.Request().Context(), data.IDs); err != nil {
		return err
	}
	s.audit(ctx, "jadwal", "BULK", auditlog.ActionDelete, data)
	return respond(ctx, http.StatusOK, DeletedResponse{Deleted: len(data.IDs)})
}

func (s *Server) deleteJadwalByTerm(ctx echo.Context) error {
	term := ctx.Param("term")
	n, err := s.JadwalSvc.DeleteByTerm(ctx.Request().Context(), term)
	if err != nil {
		return err
	}
	s.audit(ctx, "jadwal", term, auditlog.ActionDelete, map[string]int{"count": n})
	return respond(ctx, http.StatusOK, DeletedResponse{Deleted: n})
}
