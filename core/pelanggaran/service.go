package pelanggaran

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/jadwal"
	"github.com/labasprak/asprak/core/matakuliah"
)

var (
	ErrNotFound = core.NewNotFoundError("pelanggaran")

	errFinalized  = core.NewConflictError("Pelanggaran yang sudah final tidak dapat dihapus")
	errOutOfScope = core.NewForbiddenError("Anda tidak mengkoordinasi praktikum ini")
)

// Scope is the set of praktikum a caller may act on.
type Scope struct {
	all          bool
	praktikumIDs map[string]bool
}

// FullScope lets the caller see and change every pelanggaran.
func FullScope() Scope {
	return Scope{all: true}
}

// PraktikumScope limits the caller to the given praktikum.
func PraktikumScope(ids []string) Scope {
	s := Scope{praktikumIDs: make(map[string]bool, len(ids))}
	for _, id := range ids {
		s.praktikumIDs[id] = true
	}
	return s
}

func (s Scope) Allows(praktikumID string) bool {
	return s.all || s.praktikumIDs[praktikumID]
}

func (s Scope) filterIDs() []string {
	if s.all {
		return nil
	}
	ids := make([]string, 0, len(s.praktikumIDs))
	for id := range s.praktikumIDs {
		ids = append(ids, id)
	}
	return ids
}

type (
	Repository interface {
		// Query lists pelanggaran with their asprak and jadwal, newest first.
		Query(ctx context.Context, f Filter) ([]Detail, error)
		GetByID(ctx context.Context, id int64) (Pelanggaran, error)
		Create(ctx context.Context, p Pelanggaran) (Pelanggaran, error)
		// FinalizeByMataKuliah marks the non-final pelanggaran of a mata kuliah's jadwal as final.
		FinalizeByMataKuliah(ctx context.Context, idMK int64, at time.Time) (int, error)
		Delete(ctx context.Context, id int64) error
		QueryExport(ctx context.Context, idPraktikum, tahunAjaran string) ([]ExportRow, error)
	}

	Aspraks interface {
		GetByID(ctx context.Context, id string) (asprak.Asprak, error)
	}

	Jadwals interface {
		GetByID(ctx context.Context, id int64) (jadwal.Jadwal, error)
	}

	MataKuliahs interface {
		GetByID(ctx context.Context, id int64) (matakuliah.MataKuliah, error)
	}

	Service struct {
		repo        Repository
		aspraks     Aspraks
		jadwals     Jadwals
		mataKuliahs MataKuliahs
		nowFunc     func() time.Time
	}
)

func NewService(repo Repository, aspraks Aspraks, jadwals Jadwals, mataKuliahs MataKuliahs) *Service {
	return &Service{repo: repo, aspraks: aspraks, jadwals: jadwals, mataKuliahs: mataKuliahs, nowFunc: time.Now}
}

func (svc *Service) Query(ctx context.Context, scope Scope) ([]Detail, error) {
	return svc.query(ctx, Filter{PraktikumIDs: scope.filterIDs()})
}

func (svc *Service) ByMataKuliah(ctx context.Context, scope Scope, idMK int64) ([]Detail, error) {
	if _, err := svc.mataKuliahInScope(ctx, scope, idMK); err != nil {
		return nil, err
	}
	return svc.query(ctx, Filter{IDMK: idMK})
}

func (svc *Service) query(ctx context.Context, f Filter) ([]Detail, error) {
	ps, err := svc.repo.Query(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "querying pelanggaran")
	}
	if ps == nil {
		ps = []Detail{}
	}
	return ps, nil
}

func (svc *Service) mataKuliahInScope(ctx context.Context, scope Scope, idMK int64) (matakuliah.MataKuliah, error) {
	mk, err := svc.mataKuliahs.GetByID(ctx, idMK)
	if err != nil {
		return mk, err
	}
	if !scope.Allows(mk.IDPraktikum) {
		return mk, errOutOfScope
	}
	return mk, nil
}

func (svc *Service) jadwalInScope(ctx context.Context, scope Scope, idJadwal int64) error {
	j, err := svc.jadwals.GetByID(ctx, idJadwal)
	if err != nil {
		return err
	}
	_, err = svc.mataKuliahInScope(ctx, scope, j.IDMK)
	return err
}

func (svc *Service) Create(ctx context.Context, scope Scope, np NewPelanggaran) (Pelanggaran, error) {
	if _, err := svc.aspraks.GetByID(ctx, np.IDAsprak); err != nil {
		if core.IsNotFound(err) {
			return Pelanggaran{}, core.NewValidationError(err, core.FieldError{Field: "id_asprak", Error: "asprak not found"})
		}
		return Pelanggaran{}, err
	}
	if err := svc.jadwalInScope(ctx, scope, np.IDJadwal); err != nil {
		if core.IsNotFound(err) {
			return Pelanggaran{}, core.NewValidationError(err, core.FieldError{Field: "id_jadwal", Error: "jadwal not found"})
		}
		return Pelanggaran{}, err
	}

	p, err := svc.repo.Create(ctx, Pelanggaran{
		IDAsprak:   np.IDAsprak,
		IDJadwal:   np.IDJadwal,
		Modul:      np.Modul,
		Jenis:      np.Jenis,
		Keterangan: np.Keterangan,
		CreatedAt:  svc.nowFunc().UTC(),
	})
	if err != nil {
		return Pelanggaran{}, errors.Wrap(err, "Gagal mencatat pelanggaran")
	}
	return p, nil
}

// Finalize makes every pelanggaran of a mata kuliah read-only and returns how many changed.
func (svc *Service) Finalize(ctx context.Context, scope Scope, idMK int64) (int, error) {
	if _, err := svc.mataKuliahInScope(ctx, scope, idMK); err != nil {
		return 0, err
	}
	n, err := svc.repo.FinalizeByMataKuliah(ctx, idMK, svc.nowFunc().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "Gagal memfinalisasi pelanggaran")
	}
	return n, nil
}

// Delete removes a pelanggaran that has not been finalized.
func (svc *Service) Delete(ctx context.Context, scope Scope, id int64) error {
	p, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.IsFinal {
		return errFinalized
	}
	if err = svc.jadwalInScope(ctx, scope, p.IDJadwal); err != nil {
		return err
	}
	if err = svc.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "Gagal menghapus pelanggaran")
	}
	return nil
}

// Export builds the pelanggaran sheet, optionally for one praktikum and/or one tahun ajaran.
func (svc *Service) Export(ctx context.Context, scope Scope, idPraktikum, tahunAjaran string) (core.Table, error) {
	if idPraktikum != "" && !scope.Allows(idPraktikum) {
		return core.Table{}, errOutOfScope
	}
	rows, err := svc.repo.QueryExport(ctx, idPraktikum, tahunAjaran)
	if err != nil {
		return core.Table{}, errors.Wrap(err, "querying export rows")
	}
	allowed := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		if scope.Allows(r.IDPraktikum) {
			allowed = append(allowed, r)
		}
	}
	return ExportTable(allowed), nil
}
