package system

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
)

const MaintenanceKey = "maintenance_mode"

var ErrNotFound = core.NewNotFoundError("system config")

type Config struct {
	Key       string    `json:"key"`
	ValueBool bool      `json:"value_bool"`
	UpdatedAt time.Time `json:"updated_at"` // UTC
	UpdatedBy string    `json:"updated_by"`
}

type Maintenance struct {
	Active *bool `json:"active"`
}

func (m *Maintenance) Validate() error {
	if m.Active == nil {
		return core.NewValidationError(errors.New(`Field "active" (boolean) diperlukan`))
	}
	return nil
}

type (
	Repository interface {
		Get(ctx context.Context, key string) (Config, error)
		Upsert(ctx context.Context, c Config) error
	}

	Service struct {
		repo    Repository
		logger  core.Logger
		nowFunc func() time.Time
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger, nowFunc: time.Now}
}

// MaintenanceStatus reports whether maintenance mode is on. Read errors count as off.
func (svc *Service) MaintenanceStatus(ctx context.Context) bool {
	c, err := svc.repo.Get(ctx, MaintenanceKey)
	if err != nil {
		if err != ErrNotFound {
			svc.logger.Error(errors.Wrap(err, "fetching maintenance status").Error())
		}
		return false
	}
	return c.ValueBool
}

func (svc *Service) SetMaintenance(ctx context.Context, active bool, userID string) error {
	err := svc.repo.Upsert(ctx, Config{
		Key:       MaintenanceKey,
		ValueBool: active,
		UpdatedAt: svc.nowFunc().UTC(),
		UpdatedBy: userID,
	})
	if err != nil {
		return errors.Wrap(err, "Gagal mengubah status maintenance")
	}
	return nil
}
