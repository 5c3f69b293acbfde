package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/auditlog"
)

func (s *Server) registerAsprakAPI(authed *echo.Group) {
	g := authed.Group("/asprak", s.staffOnly())
	g.GET("", s.listAsprak)
	g.GET("/codes", s.asprakCodes)
	g.GET("/:id/assignments", s.asprakAssignments)
	g.POST("", s.upsertAsprak)
	g.POST("/generate-code", s.generateAsprakCode)
	g.POST("/import/preview", s.previewAsprak, s.uploadLimit())
	g.POST("/import/edit-code", s.editAsprakPreviewCode)
	g.DELETE("/:id", s.deleteAsprak)
}

type (
	UpsertAsprakResponse struct {
		ID string `json:"id"`
	}

	// EditCodeRequest changes the code of one row of an asprak import preview.
	EditCodeRequest struct {
		Rows          []asprak.PreviewRow `json:"rows"`
		Index         int                 `json:"index"`
		Kode          string              `json:"kode"`
		ForceOverride bool                `json:"forceOverride"`
	}
)

func (s *Server) listAsprak(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	as, err := s.AsprakSvc.Query(ctx.Request().Context(), ord.Orderings)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, as)
}

func (s *Server) asprakCodes(ctx echo.Context) error {
	codes, err := s.AsprakSvc.Codes(ctx.Request().Context())
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, codes)
}

func (s *Server) asprakAssignments(ctx echo.Context) error {
	as, err := s.AsprakSvc.Assignments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, as)
}

func (s *Server) upsertAsprak(ctx echo.Context) error {
	var data asprak.UpsertAsprak
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertAsprak")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	id, created, err := s.AsprakSvc.Upsert(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	action := auditlog.ActionUpdate
	if created {
		action = auditlog.ActionCreate
	}
	s.audit(ctx, "asprak", id, action, data)
	return respond(ctx, http.StatusOK, UpsertAsprakResponse{ID: id})
}

func (s *Server) generateAsprakCode(ctx echo.Context) error {
	var data asprak.GenerateCodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateCodeRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	res, err := s.AsprakSvc.GenerateCode(ctx.Request().Context(), data.NamaLengkap)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, res)
}

func (s *Server) previewAsprak(ctx echo.Context) error {
	pr, records, err := bindPreview(ctx)
	if err != nil {
		return err
	}
	rows, err := s.AsprakSvc.Preview(ctx.Request().Context(), records, pr.ForceOverride)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rows)
}

func (s *Server) editAsprakPreviewCode(ctx echo.Context) error {
	var data EditCodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditCodeRequest")
	}

	existing, err := s.AsprakSvc.ExistingCodes(ctx.Request().Context())
	if err != nil {
		return err
	}
	rows, err := asprak.ValidateCodeEdit(data.Rows, data.Index, data.Kode, existing, data.ForceOverride)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rows)
}

func (s *Server) deleteAsprak(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := s.AsprakSvc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	s.audit(ctx, "asprak", id, auditlog.ActionDelete, nil)
	return respondMessage(ctx, http.StatusOK, "Asprak dihapus")
}
