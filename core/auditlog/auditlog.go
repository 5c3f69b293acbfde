package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
)

const DefaultPageSize = 10

// Actions
const (
	ActionCreate             = "CREATE"
	ActionUpdate             = "UPDATE"
	ActionDelete             = "DELETE"
	ActionImport             = "IMPORT"
	ActionSavePlotting       = "SAVE_PLOTTING"
	ActionEnableMaintenance  = "ENABLE_MAINTENANCE"
	ActionDisableMaintenance = "DISABLE_MAINTENANCE"
	ActionClear              = "CLEAR"
)

type Entry struct {
	ID        int64           `json:"id"`
	Table     string          `json:"table_name"`
	RecordID  string          `json:"record_id"`
	Action    string          `json:"action"`
	Changes   json.RawMessage `json:"changes"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"` // UTC
}

type UserInfo struct {
	NamaLengkap string `json:"nama_lengkap"`
	Role        string `json:"role"`
}

// EntryWithUser is an entry with the pengguna who made the change, when still known.
type EntryWithUser struct {
	Entry
	Pengguna *UserInfo `json:"pengguna"`
}

type Page struct {
	Logs  []EntryWithUser `json:"logs"`
	Count int             `json:"count"`
}

type (
	Repository interface {
		Create(ctx context.Context, e Entry) error
		// Query returns one page of entries, newest first, and the total number of entries.
		Query(ctx context.Context, page core.Page) ([]EntryWithUser, int, error)
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

// Record appends an entry. Failures are logged and never reach the caller.
func (svc *Service) Record(ctx context.Context, userID, table, recordID, action string, changes interface{}) {
	e := Entry{
		Table:     table,
		RecordID:  recordID,
		Action:    action,
		UserID:    userID,
		CreatedAt: svc.nowFunc().UTC(),
	}
	if changes != nil {
		b, err := json.Marshal(changes)
		if err != nil {
			svc.logger.Error(errors.Wrapf(err, "marshalling audit changes of %s %s", table, action).Error())
		} else {
			e.Changes = b
		}
	}
	if err := svc.repo.Create(ctx, e); err != nil {
		svc.logger.Error(errors.Wrapf(err, "recording audit log %s %s", table, action).Error())
	}
}

func (svc *Service) Query(ctx context.Context, number, size int) (Page, error) {
	entries, count, err := svc.repo.Query(ctx, core.NewPage(number, size, DefaultPageSize))
	if err != nil {
		return Page{}, errors.Wrap(err, "querying audit logs")
	}
	if entries == nil {
		entries = []EntryWithUser{}
	}
	return Page{Logs: entries, Count: count}, nil
}
