package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core/pelanggaran"
	"github.com/labasprak/asprak/core/rbac"
)

// roleMiddleware lets through the callers whose role is one of roles.
func (s *Server) roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := s.getContextClaims(ctx)
			if err != nil {
				return err
			}
			if rbac.HasRole(claims.Role, roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func (s *Server) adminOnly() echo.MiddlewareFunc { return s.roleMiddleware(rbac.RoleAdmin) }
func (s *Server) staffOnly() echo.MiddlewareFunc { return s.roleMiddleware(rbac.Staff...) }
func (s *Server) anyRole() echo.MiddlewareFunc   { return s.roleMiddleware(rbac.AllRoles...) }

// maintenanceMiddleware refuses authenticated non-admin requests while maintenance mode is on.
func (s *Server) maintenanceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := s.getContextClaims(ctx)
		if err != nil {
			return err
		}
		if claims.Role != rbac.RoleAdmin && s.SystemSvc.MaintenanceStatus(ctx.Request().Context()) {
			return errMaintenance
		}
		return next(ctx)
	}
}

// uploadLimit caps the body size of upload routes.
func (s *Server) uploadLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit(s.Conf.Server.MaxUploadSize)
}

// pelanggaranScope restricts koordinator callers to the praktikum they actively coordinate.
func (s *Server) pelanggaranScope(ctx echo.Context) (pelanggaran.Scope, error) {
	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return pelanggaran.Scope{}, err
	}
	if claims.Role != rbac.RoleAsprakKoor {
		return pelanggaran.FullScope(), nil
	}
	ids, err := s.PenggunaSvc.ActivePraktikumIDs(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return pelanggaran.Scope{}, errors.Wrap(err, "querying koordinator assignments")
	}
	return pelanggaran.PraktikumScope(ids), nil
}

// audit records a change made by the caller.
func (s *Server) audit(ctx echo.Context, table, recordID, action string, changes interface{}) {
	claims, _ := s.getContextClaims(ctx)
	s.AuditLogSvc.Record(ctx.Request().Context(), claims.Subject, table, recordID, action, changes)
}
