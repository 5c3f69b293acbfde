package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labasprak/asprak/core/auditlog"
)

func (s *Server) registerAuditLogAPI(authed *echo.Group) {
	authed.GET("/audit-logs", s.listAuditLogs, s.staffOnly())
}

func (s *Server) listAuditLogs(ctx echo.Context) error {
	page, err := s.AuditLogSvc.Query(
		ctx.Request().Context(),
		queryInt(ctx, "page", 1),
		queryInt(ctx, "page_size", auditlog.DefaultPageSize),
	)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, page)
}
