package matakuliah

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/praktikum"
)

var ErrNotFound = core.NewNotFoundError("mata kuliah")

type (
	Repository interface {
		// QueryByTerm lists mata kuliah with their praktikum, ordered by nama_lengkap.
		// An empty term lists every term.
		QueryByTerm(ctx context.Context, term string) ([]WithPraktikum, error)
		GetByID(ctx context.Context, id int64) (MataKuliah, error)
		GetByPraktikumAndProdi(ctx context.Context, praktikumID, programStudi string) (MataKuliah, error)
		Create(ctx context.Context, mk MataKuliah) (MataKuliah, error)
		Delete(ctx context.Context, ids ...int64) error
		Exists(ctx context.Context, praktikumID, programStudi string) (bool, error)
		UpdateColor(ctx context.Context, id int64, warna string) error
		// UpdateColorByPraktikum recolours every mata kuliah of the given praktikum and returns how many changed.
		UpdateColorByPraktikum(ctx context.Context, praktikumIDs []string, warna string) (int, error)
	}

	// Praktikums is the part of the praktikum service mata kuliah depend on.
	Praktikums interface {
		GetByID(ctx context.Context, id string) (praktikum.Praktikum, error)
		GetOrCreate(ctx context.Context, nama, term string) (praktikum.Praktikum, error)
		ByName(ctx context.Context, nama string) ([]praktikum.Praktikum, error)
		ByTerm(ctx context.Context, term string) ([]praktikum.WithStats, error)
	}

	Service struct {
		repo       Repository
		praktikums Praktikums
	}
)

func NewService(repo Repository, praktikums Praktikums) *Service {
	return &Service{repo: repo, praktikums: praktikums}
}

// ByTerm groups the mata kuliah of a term by praktikum name.
func (svc *Service) ByTerm(ctx context.Context, term string) ([]Group, error) {
	mks, err := svc.List(ctx, term)
	if err != nil {
		return nil, err
	}

	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, mk := range mks {
		name := mk.Praktikum.Nama
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{MKSingkat: name, PraktikumID: mk.Praktikum.ID, Items: []WithPraktikum{}})
		}
		groups[i].Items = append(groups[i].Items, mk)
	}
	// a Collator is not safe for concurrent use
	cl := collate.New(language.Indonesian, collate.IgnoreCase)
	sort.SliceStable(groups, func(i, j int) bool {
		return cl.CompareString(groups[i].MKSingkat, groups[j].MKSingkat) < 0
	})
	return groups, nil
}

// List returns the ungrouped mata kuliah of a term (every term when empty).
func (svc *Service) List(ctx context.Context, term string) ([]WithPraktikum, error) {
	if core.IsAllTerms(term) {
		term = ""
	}
	mks, err := svc.repo.QueryByTerm(ctx, term)
	if err != nil {
		return nil, errors.Wrap(err, "querying mata kuliah")
	}
	if mks == nil {
		mks = []WithPraktikum{}
	}
	return mks, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (MataKuliah, error) {
	return svc.repo.GetByID(ctx, id)
}

// resolvePraktikum returns the praktikum nm belongs to, creating it from MKSingkat when needed.
func (svc *Service) resolvePraktikum(ctx context.Context, nm NewMataKuliah, term string) (praktikum.Praktikum, error) {
	if nm.IDPraktikum != "" {
		p, err := svc.praktikums.GetByID(ctx, nm.IDPraktikum)
		if core.IsNotFound(err) {
			return p, core.NewValidationError(err, core.FieldError{Field: "id_praktikum", Error: "praktikum not found"})
		}
		return p, err
	}
	if term == "" {
		return praktikum.Praktikum{}, core.NewValidationError(nil, core.FieldError{Field: "term", Error: "this field is required"})
	}
	return svc.praktikums.GetOrCreate(ctx, nm.MKSingkat, term)
}

func (svc *Service) Create(ctx context.Context, nm NewMataKuliah, term string) (MataKuliah, error) {
	p, err := svc.resolvePraktikum(ctx, nm, term)
	if err != nil {
		return MataKuliah{}, err
	}
	mk, err := svc.repo.Create(ctx, newMataKuliah(nm, p))
	if err != nil {
		return MataKuliah{}, errors.Wrap(err, "creating mata kuliah")
	}
	return mk, nil
}

func newMataKuliah(nm NewMataKuliah, p praktikum.Praktikum) MataKuliah {
	warna := nm.Warna
	if warna == "" {
		warna = CourseColor(p.Nama)
	}
	return MataKuliah{
		IDPraktikum:  p.ID,
		NamaLengkap:  nm.NamaLengkap,
		ProgramStudi: nm.ProgramStudi,
		DosenKoor:    nm.DosenKoor,
		Warna:        warna,
	}
}

// BulkCreate inserts rows one by one; failures are reported per row and do not stop the batch.
func (svc *Service) BulkCreate(ctx context.Context, rows []NewMataKuliah, term string) BulkResult {
	res := BulkResult{Errors: []string{}}
	for _, nm := range rows {
		p, err := svc.resolvePraktikum(ctx, nm, term)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to prepare %s: %v", nm.MKSingkat, errorMessage(err)))
			continue
		}
		if _, err = svc.repo.Create(ctx, newMataKuliah(nm, p)); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to insert %s (%s): %v", nm.NamaLengkap, nm.ProgramStudi, err))
			continue
		}
		res.Inserted++
	}
	return res
}

func (svc *Service) Exists(ctx context.Context, praktikumID, programStudi string) (bool, error) {
	ok, err := svc.repo.Exists(ctx, praktikumID, core.CleanUpper(programStudi))
	if err != nil {
		return false, errors.Wrap(err, "checking mata kuliah")
	}
	return ok, nil
}

// UpdateColors recolours each listed mata kuliah; items without id or warna are skipped.
func (svc *Service) UpdateColors(ctx context.Context, items []ColorUpdate) ColorResult {
	res := ColorResult{Errors: []string{}}
	for _, it := range items {
		if it.ID == 0 || it.Warna == "" {
			continue
		}
		if err := svc.repo.UpdateColor(ctx, it.ID, it.Warna); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to update %d: %v", it.ID, err))
			continue
		}
		res.Updated++
	}
	return res
}

// UpdateColorByPraktikumName recolours the mata kuliah of every praktikum called nama, in all terms.
func (svc *Service) UpdateColorByPraktikumName(ctx context.Context, pc PraktikumColor) (int, error) {
	ps, err := svc.praktikums.ByName(ctx, pc.Nama)
	if err != nil {
		return 0, errors.Wrap(err, "finding praktikum by name")
	}
	if len(ps) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	n, err := svc.repo.UpdateColorByPraktikum(ctx, ids, pc.Warna)
	if err != nil {
		return 0, errors.Wrapf(err, "updating colours of %s", pc.Nama)
	}
	return n, nil
}

// Preview validates spreadsheet rows against the praktikum and mata kuliah of a term.
func (svc *Service) Preview(ctx context.Context, records []core.Record, term string) ([]PreviewRow, error) {
	ps, err := svc.praktikums.ByTerm(ctx, term)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Nama)
	}
	groups, err := svc.ByTerm(ctx, term)
	if err != nil {
		return nil, err
	}
	return ValidatePreview(records, names, groups), nil
}

func errorMessage(err error) string {
	if verr, ok := errors.Cause(err).(*core.ValidationError); ok && len(verr.Fields) > 0 {
		return verr.Fields[0].Field + ": " + verr.Fields[0].Error
	}
	return err.Error()
}
