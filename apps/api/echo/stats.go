package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) registerStatsAPI(authed *echo.Group) {
	authed.GET("/stats", s.dashboard, s.anyRole())
}

func (s *Server) dashboard(ctx echo.Context) error {
	d, err := s.StatsSvc.Dashboard(ctx.Request().Context(), ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, d)
}
