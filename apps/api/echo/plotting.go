package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/plotting"
)

func (s *Server) registerPlottingAPI(authed *echo.Group) {
	g := authed.Group("/plotting")
	g.GET("", s.listPlotting, s.anyRole())

	staff := s.staffOnly()
	g.POST("/validate", s.validatePlotting, staff)
	g.POST("", s.savePlotting, staff)
	g.DELETE("/:id", s.deletePlotting, staff)
}

type SavedResponse struct {
	Inserted int `json:"inserted"`
}

func (s *Server) listPlotting(ctx echo.Context) error {
	praktikumID := ctx.QueryParam("praktikum")
	if praktikumID == "all" {
		praktikumID = ""
	}
	res, err := s.PlottingSvc.List(ctx.Request().Context(), plotting.ListFilter{
		Term:        ctx.QueryParam("term"),
		PraktikumID: praktikumID,
		Page:        core.NewPage(queryInt(ctx, "page", 1), queryInt(ctx, "limit", 0), plotting.DefaultPageSize),
	})
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, res)
}

func (s *Server) validatePlotting(ctx echo.Context) error {
	var data plotting.ValidateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ValidateRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	res, err := s.PlottingSvc.ValidateImport(ctx.Request().Context(), data.Rows, data.Term)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, res)
}

func (s *Server) savePlotting(ctx echo.Context) error {
	var data plotting.SaveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	n, err := s.PlottingSvc.Save(ctx.Request().Context(), data.Assignments)
	if err != nil {
		return err
	}
	s.audit(ctx, "asprak_praktikum", "BULK", auditlog.ActionSavePlotting, map[string]int{"count": n})
	return respond(ctx, http.StatusOK, SavedResponse{Inserted: n})
}

func (s *Server) deletePlotting(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "id", Error: "invalid id"})
	}
	if err = s.PlottingSvc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	s.audit(ctx, "asprak_praktikum", strconv.Itoa(id), auditlog.ActionDelete, nil)
	return respondMessage(ctx, http.StatusOK, "Plotting dihapus")
}
