package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/importer"
	"github.com/labasprak/asprak/services/spreadsheet"
)

func (s *Server) registerDatasetAPI(authed *echo.Group) {
	authed.GET("/export", s.exportDataset, s.staffOnly())
	authed.GET("/export/xlsx", s.exportDatasetXLSX, s.staffOnly())
	authed.POST("/import", s.importDataset, s.adminOnly(), s.uploadLimit())
	authed.POST("/clear", s.clearDataset, s.adminOnly())
}

func (s *Server) exportDataset(ctx echo.Context) error {
	d, err := s.ImporterSvc.Export(ctx.Request().Context(), ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, d)
}

func (s *Server) exportDatasetXLSX(ctx echo.Context) error {
	term := ctx.QueryParam("term")
	d, err := s.ImporterSvc.Export(ctx.Request().Context(), term)
	if err != nil {
		return err
	}

	attachment(ctx, spreadsheet.ContentTypeXLSX, importer.ExportFileName(term))
	ctx.Response().WriteHeader(http.StatusOK)
	return spreadsheet.WriteWorkbook(ctx.Response(), d.Tables()...)
}

func (s *Server) importDataset(ctx echo.Context) error {
	fh, err := ctx.FormFile(fileField)
	if err != nil {
		if err == http.ErrMissingFile {
			return core.NewValidationError(errors.New("No file provided"))
		}
		return errors.Wrap(err, "reading uploaded file")
	}
	if !spreadsheet.IsXLSX(fh.Filename) {
		return core.NewValidationError(errors.New("File harus berformat .xlsx"))
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	wb, err := spreadsheet.ReadWorkbook(f)
	if err != nil {
		return err
	}
	skip, _ := strconv.ParseBool(ctx.FormValue("skipConflicts"))
	res, err := s.ImporterSvc.Import(ctx.Request().Context(), wb, importer.Options{
		Term:          ctx.FormValue("term"),
		SkipConflicts: skip,
	})
	if err != nil {
		return err
	}
	s.audit(ctx, "dataset", fh.Filename, auditlog.ActionImport, map[string]interface{}{
		"inserted": res.Inserted, "term": ctx.FormValue("term"),
	})
	return respond(ctx, http.StatusOK, res)
}

func (s *Server) clearDataset(ctx echo.Context) error {
	if err := s.ImporterSvc.Clear(ctx.Request().Context()); err != nil {
		return err
	}
	s.audit(ctx, "dataset", "ALL", auditlog.ActionClear, importer.ClearOrder)
	return respondMessage(ctx, http.StatusOK, "Database cleared")
}
