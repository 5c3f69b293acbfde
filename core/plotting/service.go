package plotting

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/praktikum"
)

var ErrNotFound = core.NewNotFoundError("plotting")

type (
	Repository interface {
		// Query returns one page of assignments and the number of assignments matching f.
		Query(ctx context.Context, f ListFilter) ([]Item, int, error)
		// Link stores (asprakID, praktikumID) unless it exists, returning its id and whether it was created.
		Link(ctx context.Context, asprakID, praktikumID string) (int, bool, error)
		// LinkMany stores every missing pair and returns how many were inserted.
		LinkMany(ctx context.Context, as []Assignment) (int, error)
		Delete(ctx context.Context, id int) error
	}

	// Aspraks is satisfied by asprak.Repository.
	Aspraks interface {
		QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]asprak.Asprak, error)
	}

	Praktikums interface {
		ByTerm(ctx context.Context, term string) ([]praktikum.WithStats, error)
	}

	Service struct {
		repo       Repository
		aspraks    Aspraks
		praktikums Praktikums
	}
)

func NewService(repo Repository, aspraks Aspraks, praktikums Praktikums) *Service {
	return &Service{repo: repo, aspraks: aspraks, praktikums: praktikums}
}

func (svc *Service) List(ctx context.Context, f ListFilter) (ListResult, error) {
	if core.IsAllTerms(f.Term) {
		f.Term = ""
	}
	if core.IsAllTerms(f.PraktikumID) {
		f.PraktikumID = ""
	}
	f.Page = core.NewPage(f.Page.Number, f.Page.Size, DefaultPageSize)

	items, total, err := svc.repo.Query(ctx, f)
	if err != nil {
		return ListResult{}, errors.Wrap(err, "querying plotting")
	}
	if items == nil {
		items = []Item{}
	}
	return ListResult{Data: items, Total: total}, nil
}

// ValidateImport resolves rows of (asprak code, praktikum name) for a term. A code held by
// several aspraks is ambiguous unless the row names the chosen asprak.
func (svc *Service) ValidateImport(ctx context.Context, rows []ImportRow, term string) (ValidationResult, error) {
	as, err := svc.aspraks.QueryAll(ctx, nil)
	if err != nil {
		return ValidationResult{}, errors.Wrap(err, "querying asprak")
	}
	byCode := make(map[string][]Candidate)
	for _, a := range as {
		byCode[a.Kode] = append(byCode[a.Kode], Candidate{
			ID:          a.ID,
			NamaLengkap: a.NamaLengkap,
			NIM:         a.NIM,
			Angkatan:    a.Angkatan,
		})
	}

	ps, err := svc.praktikums.ByTerm(ctx, term)
	if err != nil {
		return ValidationResult{}, err
	}
	byName := make(map[string]string, len(ps))
	for _, p := range ps {
		byName[strings.ToUpper(p.Nama)] = p.ID
	}

	res := ValidationResult{
		ValidRows:     []ValidRow{},
		AmbiguousRows: []AmbiguousRow{},
		InvalidRows:   []InvalidRow{},
	}
	for _, row := range rows {
		code := strings.TrimSpace(row.KodeAsprak)
		mkName := strings.ToUpper(strings.TrimSpace(row.MKSingkat))

		praktikumID, ok := byName[mkName]
		if !ok {
			res.InvalidRows = append(res.InvalidRows, InvalidRow{
				Original: row,
				Reason:   fmt.Sprintf("Praktikum '%s' not found in term %s", mkName, term),
			})
			continue
		}
		if row.SelectedAsprakID != "" {
			res.ValidRows = append(res.ValidRows, ValidRow{AsprakID: row.SelectedAsprakID, PraktikumID: praktikumID, Original: row})
			continue
		}

		switch candidates := byCode[code]; len(candidates) {
		case 0:
			res.InvalidRows = append(res.InvalidRows, InvalidRow{
				Original: row,
				Reason:   fmt.Sprintf("Asprak code '%s' not found", code),
			})
		case 1:
			res.ValidRows = append(res.ValidRows, ValidRow{AsprakID: candidates[0].ID, PraktikumID: praktikumID, Original: row})
		default:
			res.AmbiguousRows = append(res.AmbiguousRows, AmbiguousRow{
				Original:    row,
				Candidates:  candidates,
				Reason:      fmt.Sprintf("Multiple aspraks found with code '%s'", code),
				PraktikumID: praktikumID,
			})
		}
	}
	return res, nil
}

// Save stores the assignments, ignoring those that already exist.
func (svc *Service) Save(ctx context.Context, as []Assignment) (int, error) {
	if len(as) == 0 {
		return 0, nil
	}
	n, err := svc.repo.LinkMany(ctx, as)
	if err != nil {
		return 0, errors.Wrap(err, "saving plotting")
	}
	return n, nil
}

// Link assigns one asprak to one praktikum.
func (svc *Service) Link(ctx context.Context, asprakID, praktikumID string) (int, bool, error) {
	return svc.repo.Link(ctx, asprakID, praktikumID)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.Delete(ctx, id)
}
