package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/praktikum"
	"github.com/labasprak/asprak/core/rbac"
)

func (s *Server) registerPraktikumAPI(authed *echo.Group) {
	authed.GET("/tahun-ajaran", s.listTerms, s.staffOnly())

	g := authed.Group("/praktikum")
	g.GET("", s.praktikumByTerm, s.anyRole())
	g.GET("/all", s.allPraktikum, s.anyRole())
	g.GET("/names", s.praktikumNames, s.anyRole())
	g.GET("/:id/details", s.praktikumDetails, s.anyRole())

	staff := s.staffOnly()
	g.POST("", s.getOrCreatePraktikum, staff)
	g.POST("/bulk", s.bulkUpsertPraktikum, staff)
	g.POST("/import/preview", s.previewPraktikum, staff, s.uploadLimit())
	g.DELETE("", s.deletePraktikum, staff)
}

type (
	BulkPraktikumRequest struct {
		Rows []praktikum.NewPraktikum `json:"rows"`
	}

	DeleteRequest struct {
		IDs []string `json:"ids"`
	}
)

func (s *Server) listTerms(ctx echo.Context) error {
	terms, err := s.PraktikumSvc.Terms(ctx.Request().Context())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, terms)
}

func (s *Server) praktikumByTerm(ctx echo.Context) error {
	ps, err := s.PraktikumSvc.ByTerm(ctx.Request().Context(), ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, ps)
}

func (s *Server) allPraktikum(ctx echo.Context) error {
	ps, err := s.PraktikumSvc.All(ctx.Request().Context())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, ps)
}

func (s *Server) praktikumNames(ctx echo.Context) error {
	names, err := s.PraktikumSvc.Names(ctx.Request().Context())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, names)
}

func (s *Server) praktikumDetails(ctx echo.Context) error {
	id := ctx.Param("id")
	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return err
	}
	if claims.Role == rbac.RoleAsprakKoor {
		scope, err := s.pelanggaranScope(ctx)
		if err != nil {
			return err
		}
		if !scope.Allows(id) {
			return errHttpForbidden
		}
	}

	d, err := s.PraktikumSvc.Details(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, d)
}

func (s *Server) getOrCreatePraktikum(ctx echo.Context) error {
	var data praktikum.NewPraktikum
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPraktikum")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	p, err := s.PraktikumSvc.GetOrCreate(ctx.Request().Context(), data.Nama, data.TahunAjaran)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, p)
}

func (s *Server) bulkUpsertPraktikum(ctx echo.Context) error {
	var data BulkPraktikumRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkPraktikumRequest")
	}

	rows := make([]praktikum.NewPraktikum, 0, len(data.Rows))
	var invalid []string
	for i := range data.Rows {
		if err := data.Rows[i].Validate(s.Validate); err != nil {
			invalid = append(invalid, fmt.Sprintf("Row %d: nama dan tahun_ajaran (YYYYYYYY-S) wajib diisi", i+1))
			continue
		}
		rows = append(rows, data.Rows[i])
	}

	res, err := s.PraktikumSvc.BulkUpsert(ctx.Request().Context(), rows)
	if err != nil {
		return err
	}
	res.Errors = append(invalid, res.Errors...)
	if res.Errors == nil {
		res.Errors = []string{}
	}
	if res.Inserted > 0 {
		s.audit(ctx, "praktikum", "", auditlog.ActionImport, map[string]int{"inserted": res.Inserted, "skipped": res.Skipped})
	}
	return respond(ctx, http.StatusOK, res)
}

func (s *Server) previewPraktikum(ctx echo.Context) error {
	_, records, err := bindPreview(ctx)
	if err != nil {
		return err
	}
	rows, err := s.PraktikumSvc.Preview(ctx.Request().Context(), records)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rows)
}

func (s *Server) deletePraktikum(ctx echo.Context) error {
	var data DeleteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteRequest")
	}
	if len(data.IDs) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "ids", Error: "this field is required"})
	}

	if err := s.PraktikumSvc.Delete(ctx.Request().Context(), data.IDs...); err != nil {
		return err
	}
	for _, id := range data.IDs {
		s.audit(ctx, "praktikum", id, auditlog.ActionDelete, nil)
	}
	return respondMessage(ctx, http.StatusOK, "Praktikum dihapus")
}
