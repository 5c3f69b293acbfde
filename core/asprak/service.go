package asprak

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/praktikum"
)

var (
	ErrNotFound = core.NewNotFoundError("asprak")

	// OrderingFields are the fields an asprak list may be ordered by.
	OrderingFields = []string{"nim", "nama_lengkap", "kode", "angkatan", "created_at"}
)

type (
	Repository interface {
		// QueryAll lists every asprak, ordered by nim unless told otherwise.
		QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]Asprak, error)
		GetByID(ctx context.Context, id string) (Asprak, error)
		GetByNIM(ctx context.Context, nim string) (Asprak, error)
		// GetByKode returns the holder of a code.
		GetByKode(ctx context.Context, kode string) (Asprak, error)
		Create(ctx context.Context, a Asprak) (Asprak, error)
		Update(ctx context.Context, a Asprak) (Asprak, error)
		Delete(ctx context.Context, ids ...string) error
		QueryAssignments(ctx context.Context, id string) ([]Assignment, error)
	}

	// PraktikumResolver finds or creates the praktikum an asprak is linked to.
	PraktikumResolver interface {
		GetOrCreate(ctx context.Context, nama, term string) (praktikum.Praktikum, error)
	}

	// Linker links an asprak to a praktikum, reporting whether a new link was made.
	Linker interface {
		Link(ctx context.Context, asprakID, praktikumID string) (int, bool, error)
	}

	Service struct {
		repo       Repository
		praktikums PraktikumResolver
		links      Linker
		nowFunc    func() time.Time
	}
)

func NewService(repo Repository, praktikums PraktikumResolver, links Linker) *Service {
	return &Service{repo: repo, praktikums: praktikums, links: links, nowFunc: time.Now}
}

func (svc *Service) Query(ctx context.Context, ordering []core.DBOrdering) ([]Asprak, error) {
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "nim", Ascending: true}}
	}
	as, err := svc.repo.QueryAll(ctx, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying asprak")
	}
	if as == nil {
		as = []Asprak{}
	}
	return as, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Asprak, error) {
	return svc.repo.GetByID(ctx, id)
}

// Codes lists the distinct codes in use, sorted.
func (svc *Service) Codes(ctx context.Context) ([]string, error) {
	as, err := svc.repo.QueryAll(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying asprak")
	}
	codes := make([]string, 0, len(as))
	for _, a := range as {
		codes = append(codes, a.Kode)
	}
	codes = core.UniqueStrings(codes)
	sort.Strings(codes)
	return codes, nil
}

func (svc *Service) Assignments(ctx context.Context, id string) ([]Assignment, error) {
	if _, err := svc.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	as, err := svc.repo.QueryAssignments(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	if as == nil {
		as = []Assignment{}
	}
	return as, nil
}

// Upsert creates or updates the asprak with ua.NIM and links it to the named praktikum of ua.Term.
// A code held by another, still active, asprak is a conflict. A code held by an inactive one is
// recycled: the previous holder gets an expired code. created reports whether the asprak is new.
func (svc *Service) Upsert(ctx context.Context, ua UpsertAsprak) (id string, created bool, err error) {
	angkatan := ua.Angkatan
	if angkatan < 100 {
		angkatan += 2000
	}

	var owner *Asprak
	if o, err := svc.repo.GetByKode(ctx, ua.Kode); err == nil {
		owner = &o
	} else if err != ErrNotFound {
		return "", false, errors.Wrap(err, "finding code owner")
	}

	if check := CheckCodeConflict(owner, ua.NIM, svc.nowFunc()); check.HasConflict {
		return "", false, core.NewConflictError(ConflictMessage(ua.Kode, *check.Owner))
	}

	existing, err := svc.repo.GetByNIM(ctx, ua.NIM)
	switch {
	case err == nil:
		existing.NamaLengkap = ua.NamaLengkap
		existing.Kode = ua.Kode
		existing.Angkatan = angkatan
		if _, err = svc.repo.Update(ctx, existing); err != nil {
			return "", false, errors.Wrap(err, "updating asprak")
		}
		id = existing.ID
	case err == ErrNotFound:
		if owner != nil && owner.NIM != ua.NIM {
			expired := *owner
			expired.Kode = ExpiredCode(*owner)
			if _, err = svc.repo.Update(ctx, expired); err != nil {
				return "", false, errors.Wrap(err, "expiring previous code")
			}
		}
		a, err := svc.repo.Create(ctx, Asprak{
			NIM:         ua.NIM,
			NamaLengkap: ua.NamaLengkap,
			Kode:        ua.Kode,
			Angkatan:    angkatan,
			CreatedAt:   svc.nowFunc().UTC(),
		})
		if err != nil {
			return "", false, errors.Wrap(err, "creating asprak")
		}
		id, created = a.ID, true
	default:
		return "", false, errors.Wrap(err, "finding asprak by nim")
	}

	for _, nama := range ua.PraktikumNames {
		p, err := svc.praktikums.GetOrCreate(ctx, nama, ua.Term)
		if err != nil {
			return "", false, errors.Wrapf(err, "resolving praktikum %s", nama)
		}
		if _, _, err = svc.links.Link(ctx, id, p.ID); err != nil {
			return "", false, errors.Wrapf(err, "linking praktikum %s", nama)
		}
	}
	return id, created, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.Delete(ctx, id)
}

// GenerateCode suggests a free code for a name.
func (svc *Service) GenerateCode(ctx context.Context, name string) (CodeResult, error) {
	codes, err := svc.Codes(ctx)
	if err != nil {
		return CodeResult{}, err
	}
	used := make(map[string]bool, len(codes))
	for _, c := range codes {
		used[c] = true
	}
	res, err := GenerateCode(name, used)
	if err != nil {
		return CodeResult{}, core.NewValidationError(err, core.FieldError{Field: "nama_lengkap", Error: err.Error()})
	}
	return res, nil
}

// Preview validates CSV rows against the stored aspraks.
func (svc *Service) Preview(ctx context.Context, records []core.Record, forceOverride bool) ([]PreviewRow, error) {
	as, err := svc.repo.QueryAll(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying asprak")
	}
	codes := make([]string, 0, len(as))
	nims := make([]string, 0, len(as))
	for _, a := range as {
		codes = append(codes, a.Kode)
		nims = append(nims, a.NIM)
	}
	return ValidateImport(records, codes, nims, forceOverride), nil
}

// ExistingCodes lists stored codes with their holder's angkatan, for code edits in a preview.
func (svc *Service) ExistingCodes(ctx context.Context) ([]ExistingCode, error) {
	as, err := svc.repo.QueryAll(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying asprak")
	}
	out := make([]ExistingCode, 0, len(as))
	for _, a := range as {
		out = append(out, ExistingCode{Kode: a.Kode, Angkatan: a.Angkatan})
	}
	return out, nil
}
