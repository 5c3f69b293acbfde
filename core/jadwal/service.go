package jadwal

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/matakuliah"
)

const DefaultTodayLimit = 5

var (
	ErrNotFound          = core.NewNotFoundError("jadwal")
	ErrPenggantiNotFound = core.NewNotFoundError("jadwal pengganti")
)

type (
	Repository interface {
		// QueryByTerm lists the jadwal of a term (every term when empty) ordered by hari then jam.
		QueryByTerm(ctx context.Context, term string) ([]WithMataKuliah, error)
		// QueryByDay lists at most limit jadwal of a day ordered by jam, optionally within a term.
		QueryByDay(ctx context.Context, hari, term string, limit int) ([]WithMataKuliah, error)
		GetByID(ctx context.Context, id int64) (Jadwal, error)
		Create(ctx context.Context, j Jadwal) (Jadwal, error)
		CreateMany(ctx context.Context, js []Jadwal) (int, error)
		Update(ctx context.Context, j Jadwal) (Jadwal, error)
		Delete(ctx context.Context, ids ...int64) error
		// DeleteByTerm removes every jadwal whose mata kuliah belongs to a praktikum of term.
		DeleteByTerm(ctx context.Context, term string) (int, error)

		QueryPengganti(ctx context.Context, modul int) ([]Pengganti, error)
		GetPengganti(ctx context.Context, idJadwal int64, modul int) (Pengganti, error)
		CreatePengganti(ctx context.Context, p Pengganti) (Pengganti, error)
		UpdatePengganti(ctx context.Context, p Pengganti) (Pengganti, error)
	}

	MataKuliahs interface {
		GetByID(ctx context.Context, id int64) (matakuliah.MataKuliah, error)
		List(ctx context.Context, term string) ([]matakuliah.WithPraktikum, error)
	}

	Terms interface {
		Terms(ctx context.Context) ([]string, error)
	}

	Service struct {
		repo        Repository
		mataKuliahs MataKuliahs
		terms       Terms
		nowFunc     func() time.Time
	}
)

func NewService(repo Repository, mataKuliahs MataKuliahs, terms Terms) *Service {
	return &Service{repo: repo, mataKuliahs: mataKuliahs, terms: terms, nowFunc: time.Now}
}

// Terms lists the tahun ajaran that have praktikum, most recent first.
func (svc *Service) Terms(ctx context.Context) ([]string, error) {
	return svc.terms.Terms(ctx)
}

func (svc *Service) ByTerm(ctx context.Context, term string) ([]WithMataKuliah, error) {
	if core.IsAllTerms(term) {
		term = ""
	}
	js, err := svc.repo.QueryByTerm(ctx, term)
	if err != nil {
		return nil, errors.Wrap(err, "querying jadwal")
	}
	if js == nil {
		js = []WithMataKuliah{}
	}
	return js, nil
}

// Today lists the first jadwal of the current day. There are no classes on Sunday.
func (svc *Service) Today(ctx context.Context, limit int, term string) ([]WithMataKuliah, error) {
	wd := svc.nowFunc().Weekday()
	if wd == time.Sunday {
		return []WithMataKuliah{}, nil
	}
	if limit <= 0 {
		limit = DefaultTodayLimit
	}
	if core.IsAllTerms(term) {
		term = ""
	}
	js, err := svc.repo.QueryByDay(ctx, core.Days[wd-1], term, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying today's jadwal")
	}
	if js == nil {
		js = []WithMataKuliah{}
	}
	return js, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Jadwal, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *Service) checkMataKuliah(ctx context.Context, id int64) error {
	if _, err := svc.mataKuliahs.GetByID(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(err, core.FieldError{Field: "id_mk", Error: "mata kuliah not found"})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nj NewJadwal) (Jadwal, error) {
	if err := svc.checkMataKuliah(ctx, nj.IDMK); err != nil {
		return Jadwal{}, err
	}
	j, err := svc.repo.Create(ctx, nj.jadwal())
	if err != nil {
		return Jadwal{}, errors.Wrap(err, "creating jadwal")
	}
	return j, nil
}

// BulkCreate inserts, in one statement, every row whose mata kuliah exists. Rows naming an
// unknown mata kuliah are reported in Errors.
func (svc *Service) BulkCreate(ctx context.Context, rows []NewJadwal) (BulkResult, error) {
	res := BulkResult{Errors: []string{}}
	if len(rows) == 0 {
		return res, nil
	}

	known := make(map[int64]bool)
	js := make([]Jadwal, 0, len(rows))
	for i, nj := range rows {
		ok, checked := known[nj.IDMK]
		if !checked {
			_, err := svc.mataKuliahs.GetByID(ctx, nj.IDMK)
			if err != nil && !core.IsNotFound(err) {
				return res, errors.Wrap(err, "finding mata kuliah")
			}
			ok = err == nil
			known[nj.IDMK] = ok
		}
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d (%s): mata kuliah %d not found", i+1, nj.Kelas, nj.IDMK))
			continue
		}
		js = append(js, nj.jadwal())
	}
	if len(js) == 0 {
		return res, nil
	}

	n, err := svc.repo.CreateMany(ctx, js)
	if err != nil {
		return res, errors.Wrap(err, "bulk creating jadwal")
	}
	res.Inserted = n
	return res, nil
}

func (svc *Service) Update(ctx context.Context, id int64, uj UpdateJadwal) (Jadwal, error) {
	j, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Jadwal{}, err
	}
	if uj.IDMK != nil && *uj.IDMK != j.IDMK {
		if err = svc.checkMataKuliah(ctx, *uj.IDMK); err != nil {
			return Jadwal{}, err
		}
	}
	j, err = svc.repo.Update(ctx, uj.apply(j))
	if err != nil {
		return Jadwal{}, errors.Wrap(err, "updating jadwal")
	}
	return j, nil
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	if _, err := svc.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.Delete(ctx, id)
}

func (svc *Service) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.Delete(ctx, ids...)
}

func (svc *Service) DeleteByTerm(ctx context.Context, term string) (int, error) {
	term = core.CleanString(term)
	if core.IsAllTerms(term) {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "term", Error: "this field is required"})
	}
	n, err := svc.repo.DeleteByTerm(ctx, term)
	if err != nil {
		return 0, errors.Wrap(err, "deleting jadwal by term")
	}
	return n, nil
}

// Pengganti lists the replacement sessions of a modul; modul numbers start at 1.
func (svc *Service) Pengganti(ctx context.Context, modul int) ([]Pengganti, error) {
	if modul <= 0 {
		return []Pengganti{}, nil
	}
	ps, err := svc.repo.QueryPengganti(ctx, modul)
	if err != nil {
		return nil, errors.Wrap(err, "querying jadwal pengganti")
	}
	if ps == nil {
		ps = []Pengganti{}
	}
	return ps, nil
}

// UpsertPengganti stores the replacement of (id_jadwal, modul), overwriting a previous one.
func (svc *Service) UpsertPengganti(ctx context.Context, up UpsertPengganti) (Pengganti, error) {
	if _, err := svc.repo.GetByID(ctx, up.IDJadwal); err != nil {
		if core.IsNotFound(err) {
			return Pengganti{}, core.NewValidationError(err, core.FieldError{Field: "id_jadwal", Error: "jadwal not found"})
		}
		return Pengganti{}, err
	}

	p := Pengganti{
		IDJadwal: up.IDJadwal,
		Modul:    up.Modul,
		Tanggal:  up.Tanggal,
		Hari:     up.Hari,
		Sesi:     up.Sesi,
		Jam:      up.Jam,
		Ruangan:  up.Ruangan,
	}
	existing, err := svc.repo.GetPengganti(ctx, up.IDJadwal, up.Modul)
	switch {
	case err == nil:
		p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
		if p, err = svc.repo.UpdatePengganti(ctx, p); err != nil {
			return Pengganti{}, errors.Wrap(err, "updating jadwal pengganti")
		}
	case err == ErrPenggantiNotFound:
		p.CreatedAt = svc.nowFunc().UTC()
		if p, err = svc.repo.CreatePengganti(ctx, p); err != nil {
			return Pengganti{}, errors.Wrap(err, "creating jadwal pengganti")
		}
	default:
		return Pengganti{}, errors.Wrap(err, "finding jadwal pengganti")
	}
	return p, nil
}

// Preview resolves and checks spreadsheet rows for a term.
func (svc *Service) Preview(ctx context.Context, records []core.Record, term string) ([]PreviewRow, error) {
	if term = core.CleanString(term); core.IsAllTerms(term) {
		term = ""
	}
	mks, err := svc.mataKuliahs.List(ctx, term)
	if err != nil {
		return nil, err
	}
	rows := BuildPreview(records, mks, term)
	if term == "" {
		return rows, nil
	}
	stored, err := svc.ByTerm(ctx, term)
	if err != nil {
		return nil, err
	}
	return ValidateConflicts(rows, stored), nil
}
