package praktikum

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
)

var ErrNotFound = core.NewNotFoundError("praktikum")

type (
	Repository interface {
		// QueryAll lists every praktikum ordered by nama.
		QueryAll(ctx context.Context) ([]Praktikum, error)
		// QueryByTerm lists the praktikum of a term (all terms when empty) with their asprak counts.
		QueryByTerm(ctx context.Context, term string) ([]WithStats, error)
		QueryByTerms(ctx context.Context, terms []string) ([]Praktikum, error)
		QueryByName(ctx context.Context, nama string) ([]Praktikum, error)
		GetByID(ctx context.Context, id string) (Praktikum, error)
		GetByNameAndTerm(ctx context.Context, nama, term string) (Praktikum, error)
		Create(ctx context.Context, p Praktikum) (Praktikum, error)
		CreateMany(ctx context.Context, ps []Praktikum) ([]Praktikum, error)
		Delete(ctx context.Context, ids ...string) error
		// QueryTerms lists the distinct tahun_ajaran values, most recent first.
		QueryTerms(ctx context.Context) ([]string, error)
		// QuerySlots lists the schedule rows of a praktikum's mata kuliah ordered by kelas.
		QuerySlots(ctx context.Context, id string) ([]Slot, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) All(ctx context.Context) ([]Praktikum, error) {
	ps, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying praktikum")
	}
	if ps == nil {
		ps = []Praktikum{}
	}
	return ps, nil
}

// Names lists every distinct praktikum name; the name doubles as the id.
func (svc *Service) Names(ctx context.Context) ([]Name, error) {
	ps, err := svc.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Nama)
	}
	out := make([]Name, 0, len(ps))
	for _, n := range core.UniqueStrings(names) {
		out = append(out, Name{ID: n, Nama: n})
	}
	return out, nil
}

func (svc *Service) ByTerm(ctx context.Context, term string) ([]WithStats, error) {
	if core.IsAllTerms(term) {
		term = ""
	}
	ps, err := svc.repo.QueryByTerm(ctx, term)
	if err != nil {
		return nil, errors.Wrap(err, "querying praktikum by term")
	}
	if ps == nil {
		ps = []WithStats{}
	}
	return ps, nil
}

func (svc *Service) ByName(ctx context.Context, nama string) ([]Praktikum, error) {
	return svc.repo.QueryByName(ctx, core.CleanUpper(nama))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Praktikum, error) {
	return svc.repo.GetByID(ctx, id)
}

func (svc *Service) Details(ctx context.Context, id string) (Details, error) {
	if _, err := svc.repo.GetByID(ctx, id); err != nil {
		return Details{}, err
	}
	slots, err := svc.repo.QuerySlots(ctx, id)
	if err != nil {
		return Details{}, errors.Wrap(err, "querying slots")
	}

	classes := make([]Class, 0)
	index := make(map[string]int)
	for _, s := range slots {
		i, ok := index[s.Kelas]
		if !ok {
			i = len(classes)
			index[s.Kelas] = i
			classes = append(classes, Class{Kelas: s.Kelas, Jadwal: []Slot{}})
		}
		classes[i].Jadwal = append(classes[i].Jadwal, s)
	}
	return Details{TotalKelas: len(classes), Classes: classes}, nil
}

// GetOrCreate returns the praktikum (nama, term), inserting it when missing.
func (svc *Service) GetOrCreate(ctx context.Context, nama, term string) (Praktikum, error) {
	nama = core.CleanUpper(nama)
	p, err := svc.repo.GetByNameAndTerm(ctx, nama, term)
	if err == nil {
		return p, nil
	} else if err != ErrNotFound {
		return Praktikum{}, errors.Wrap(err, "finding praktikum")
	}
	p, err = svc.repo.Create(ctx, Praktikum{Nama: nama, TahunAjaran: term})
	if err != nil {
		return Praktikum{}, errors.Wrap(err, "creating praktikum")
	}
	return p, nil
}

// BulkUpsert inserts the rows that are neither stored nor repeated in the payload.
func (svc *Service) BulkUpsert(ctx context.Context, rows []NewPraktikum) (BulkResult, error) {
	res := BulkResult{Errors: []string{}}
	if len(rows) == 0 {
		return res, nil
	}

	terms := make([]string, 0, len(rows))
	for _, r := range rows {
		terms = append(terms, r.TahunAjaran)
	}
	existing, err := svc.repo.QueryByTerms(ctx, core.UniqueStrings(terms))
	if err != nil {
		return res, errors.Wrap(err, "querying existing praktikum")
	}
	stored := make(map[string]bool, len(existing))
	for _, p := range existing {
		stored[p.key()] = true
	}

	toInsert := make([]Praktikum, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		p := Praktikum{Nama: r.Nama, TahunAjaran: r.TahunAjaran}
		if stored[p.key()] || seen[p.key()] {
			res.Skipped++
			continue
		}
		seen[p.key()] = true
		toInsert = append(toInsert, p)
	}
	if len(toInsert) == 0 {
		return res, nil
	}

	inserted, err := svc.repo.CreateMany(ctx, toInsert)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Bulk insert err: %v", err))
		return res, nil
	}
	res.Inserted = len(inserted)
	return res, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.Delete(ctx, ids...)
}

// Terms lists the known tahun ajaran, most recent first.
func (svc *Service) Terms(ctx context.Context) ([]string, error) {
	terms, err := svc.repo.QueryTerms(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying terms")
	}
	terms = core.UniqueStrings(terms)
	sort.Sort(sort.Reverse(sort.StringSlice(terms)))
	return terms, nil
}

func (svc *Service) Preview(ctx context.Context, records []core.Record) ([]PreviewRow, error) {
	existing, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying praktikum")
	}
	return ValidatePreview(records, existing), nil
}
