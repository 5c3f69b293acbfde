package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/system"
)

func (s *Server) registerSystemAPI(public, authed *echo.Group) {
	public.GET("/system/maintenance", s.maintenanceStatus)
	authed.POST("/system/maintenance", s.setMaintenance, s.adminOnly())
}

type MaintenanceStatus struct {
	IsMaintenance bool `json:"is_maintenance"`
}

func (s *Server) maintenanceStatus(ctx echo.Context) error {
	active := s.SystemSvc.MaintenanceStatus(ctx.Request().Context())
	return respond(ctx, http.StatusOK, MaintenanceStatus{IsMaintenance: active})
}

func (s *Server) setMaintenance(ctx echo.Context) error {
	var data system.Maintenance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Maintenance")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err = s.SystemSvc.SetMaintenance(ctx.Request().Context(), *data.Active, claims.Subject); err != nil {
		return err
	}

	action := auditlog.ActionDisableMaintenance
	if *data.Active {
		action = auditlog.ActionEnableMaintenance
	}
	s.audit(ctx, "system_config", system.MaintenanceKey, action, data)
	return respond(ctx, http.StatusOK, MaintenanceStatus{IsMaintenance: *data.Active})
}
