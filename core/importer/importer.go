package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/jadwal"
	"github.com/labasprak/asprak/core/matakuliah"
	"github.com/labasprak/asprak/core/plotting"
	"github.com/labasprak/asprak/core/praktikum"
)

const defaultJam = "00:00:00"

// ClearOrder is the order tables are emptied in, children first.
var ClearOrder = []string{
	"pelanggaran",
	"jadwal_pengganti",
	"asprak_praktikum",
	"jadwal",
	"mata_kuliah",
	"asprak",
	"praktikum",
}

type (
	// Repository empties the domain tables.
	Repository interface {
		// Clear deletes every row of the ClearOrder tables, in that order.
		Clear(ctx context.Context) error
	}

	Praktikums interface {
		QueryByTerm(ctx context.Context, term string) ([]praktikum.WithStats, error)
		GetByNameAndTerm(ctx context.Context, nama, term string) (praktikum.Praktikum, error)
		Create(ctx context.Context, p praktikum.Praktikum) (praktikum.Praktikum, error)
		Delete(ctx context.Context, ids ...string) error
	}

	MataKuliahs interface {
		QueryByTerm(ctx context.Context, term string) ([]matakuliah.WithPraktikum, error)
		GetByPraktikumAndProdi(ctx context.Context, praktikumID, programStudi string) (matakuliah.MataKuliah, error)
		Create(ctx context.Context, mk matakuliah.MataKuliah) (matakuliah.MataKuliah, error)
		Delete(ctx context.Context, ids ...int64) error
	}

	Aspraks interface {
		GetByNIM(ctx context.Context, nim string) (asprak.Asprak, error)
		GetByKode(ctx context.Context, kode string) (asprak.Asprak, error)
		Create(ctx context.Context, a asprak.Asprak) (asprak.Asprak, error)
		Update(ctx context.Context, a asprak.Asprak) (asprak.Asprak, error)
		Delete(ctx context.Context, ids ...string) error
	}

	Links interface {
		Query(ctx context.Context, f plotting.ListFilter) ([]plotting.Item, int, error)
		Link(ctx context.Context, asprakID, praktikumID string) (int, bool, error)
		Delete(ctx context.Context, id int) error
	}

	Jadwals interface {
		QueryByTerm(ctx context.Context, term string) ([]jadwal.WithMataKuliah, error)
		Create(ctx context.Context, j jadwal.Jadwal) (jadwal.Jadwal, error)
		Delete(ctx context.Context, ids ...int64) error
	}

	Service struct {
		repo        Repository
		praktikums  Praktikums
		mataKuliahs MataKuliahs
		aspraks     Aspraks
		links       Links
		jadwals     Jadwals
		logger      core.Logger
		nowFunc     func() time.Time
	}
)

func NewService(
	repo Repository,
	praktikums Praktikums,
	mataKuliahs MataKuliahs,
	aspraks Aspraks,
	links Links,
	jadwals Jadwals,
	logger core.Logger,
) *Service {
	return &Service{
		repo:        repo,
		praktikums:  praktikums,
		mataKuliahs: mataKuliahs,
		aspraks:     aspraks,
		links:       links,
		jadwals:     jadwals,
		logger:      logger,
		nowFunc:     time.Now,
	}
}

type Options struct {
	// Term is the tahun ajaran of praktikum rows that do not name one.
	Term string
	// SkipConflicts skips asprak rows whose code is held by another active asprak instead of failing.
	SkipConflicts bool
}

type Result struct {
	Inserted int    `json:"inserted"`
	Message  string `json:"message"`
}

// inserted tracks the rows created by an import so they can be removed when it fails.
type inserted struct {
	praktikum  []string
	mataKuliah []int64
	asprak     []string
	links      []int
	jadwal     []int64
}

// Import loads a seed workbook. Rows are written one by one; when one fails, the rows
// created so far are deleted in reverse order. Updates of existing aspraks are kept.
func (svc *Service) Import(ctx context.Context, wb Workbook, opts Options) (Result, error) {
	if err := wb.CheckSheets(); err != nil {
		return Result{}, err
	}
	opts.Term = core.CleanString(opts.Term)

	var ins inserted
	n, err := svc.load(ctx, wb, opts, &ins)
	if err != nil {
		svc.logger.Error("import failed, rolling back", err)
		svc.rollback(ctx, ins)
		return Result{}, core.NewValidationError(errors.New("Import FAILED & ROLLED BACK: " + err.Error()))
	}

	svc.logger.Info(fmt.Sprintf("import summary: inserted %d / %d jadwal", n, len(wb[SheetJadwal])))
	return Result{Inserted: n, Message: fmt.Sprintf("Import completed! Inserted %d schedules.", n)}, nil
}

func (svc *Service) load(ctx context.Context, wb Workbook, opts Options, ins *inserted) (int, error) {
	praktikums, err := svc.loadPraktikum(ctx, wb[SheetPraktikum], opts.Term, ins)
	if err != nil {
		return 0, err
	}
	mks, err := svc.loadMataKuliah(ctx, wb[SheetMataKuliah], praktikums, ins)
	if err != nil {
		return 0, err
	}
	codes, err := svc.loadAsprak(ctx, wb[SheetAsprak], opts.SkipConflicts, ins)
	if err != nil {
		return 0, err
	}
	if err = svc.loadLinks(ctx, wb[SheetAsprakPraktikum], codes, praktikums, ins); err != nil {
		return 0, err
	}
	return svc.loadJadwal(ctx, wb[SheetJadwal], mks, ins)
}

func (svc *Service) loadPraktikum(ctx context.Context, rows []core.Record, term string, ins *inserted) (map[string]praktikum.Praktikum, error) {
	byName := make(map[string]praktikum.Praktikum, len(rows))
	for _, r := range rows {
		nama := core.CleanUpper(r.Get("nama_singkat", "nama"))
		if nama == "" {
			continue
		}
		ta := r.Get("tahun_ajaran")
		if ta == "" {
			ta = term
		}
		if ta == "" {
			return nil, errors.Errorf("Tahun Ajaran missing for %s and no default term provided.", nama)
		}

		p, err := svc.praktikums.GetByNameAndTerm(ctx, nama, ta)
		if err == praktikum.ErrNotFound {
			if p, err = svc.praktikums.Create(ctx, praktikum.Praktikum{Nama: nama, TahunAjaran: ta}); err != nil {
				return nil, errors.Wrapf(err, "Failed to insert Praktikum %s", nama)
			}
			ins.praktikum = append(ins.praktikum, p.ID)
		} else if err != nil {
			return nil, errors.Wrapf(err, "finding praktikum %s", nama)
		}
		byName[nama] = p
	}
	return byName, nil
}

// loadMataKuliah skips rows of praktikum absent from the workbook.
func (svc *Service) loadMataKuliah(ctx context.Context, rows []core.Record, praktikums map[string]praktikum.Praktikum, ins *inserted) ([]matakuliah.WithPraktikum, error) {
	mks := make([]matakuliah.WithPraktikum, 0, len(rows))
	for _, r := range rows {
		p, ok := praktikums[core.CleanUpper(r.Get("mk_singkat"))]
		if !ok {
			continue
		}
		prodi := core.CleanUpper(r.Get("program_studi"))

		mk, err := svc.mataKuliahs.GetByPraktikumAndProdi(ctx, p.ID, prodi)
		if err == matakuliah.ErrNotFound {
			mk, err = svc.mataKuliahs.Create(ctx, matakuliah.MataKuliah{
				IDPraktikum:  p.ID,
				NamaLengkap:  core.CleanUpper(r.Get("nama_lengkap")),
				ProgramStudi: prodi,
				DosenKoor:    core.CleanUpper(r.Get("dosen_koor")),
				Warna:        matakuliah.CourseColor(p.Nama),
			})
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to insert MK %s", r.Get("nama_lengkap"))
			}
			ins.mataKuliah = append(ins.mataKuliah, mk.ID)
		} else if err != nil {
			return nil, errors.Wrapf(err, "finding mata kuliah %s %s", p.Nama, prodi)
		}
		mks = append(mks, matakuliah.WithPraktikum{MataKuliah: mk, Praktikum: p})
	}
	return mks, nil
}

// loadAsprak upserts aspraks by nim and returns their ids by code.
func (svc *Service) loadAsprak(ctx context.Context, rows []core.Record, skipConflicts bool, ins *inserted) (map[string]string, error) {
	byCode := make(map[string]string, len(rows))
	for _, r := range rows {
		nim := r.Get("nim")
		kode := core.CleanUpper(r.Get("kode"))
		nama := core.CleanUpper(r.Get("nama_lengkap"))
		angkatan := asprak.NormalizeAngkatan(r.Int("angkatan"))

		var owner *asprak.Asprak
		if o, err := svc.aspraks.GetByKode(ctx, kode); err == nil {
			owner = &o
		} else if err != asprak.ErrNotFound {
			return nil, errors.Wrapf(err, "finding owner of %s", kode)
		}

		if check := asprak.CheckCodeConflict(owner, nim, svc.nowFunc()); check.HasConflict {
			if skipConflicts {
				svc.logger.Warn(fmt.Sprintf(
					"skipping asprak %s (%s): code held by %s", nama, kode, check.Owner.NamaLengkap,
				))
				continue
			}
			return nil, errors.New(asprak.ConflictMessage(kode, *check.Owner))
		}

		existing, err := svc.aspraks.GetByNIM(ctx, nim)
		switch {
		case err == nil:
			existing.Kode = kode
			existing.Angkatan = angkatan
			existing.NamaLengkap = nama
			if _, err = svc.aspraks.Update(ctx, existing); err != nil {
				return nil, errors.Wrapf(err, "Failed to update Asprak %s", nim)
			}
			byCode[kode] = existing.ID
		case err == asprak.ErrNotFound:
			if owner != nil && owner.NIM != nim {
				expired := *owner
				expired.Kode = asprak.ExpiredCode(*owner)
				if _, err = svc.aspraks.Update(ctx, expired); err != nil {
					return nil, errors.Wrapf(err, "expiring code %s", kode)
				}
			}
			created, err := svc.aspraks.Create(ctx, asprak.Asprak{
				NIM:         nim,
				NamaLengkap: nama,
				Kode:        kode,
				Angkatan:    angkatan,
				CreatedAt:   svc.nowFunc().UTC(),
			})
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to insert Asprak %s", nama)
			}
			ins.asprak = append(ins.asprak, created.ID)
			byCode[kode] = created.ID
		default:
			return nil, errors.Wrapf(err, "finding asprak %s", nim)
		}
	}
	return byCode, nil
}

// loadLinks ignores rows naming an unknown code or praktikum.
func (svc *Service) loadLinks(ctx context.Context, rows []core.Record, codes map[string]string, praktikums map[string]praktikum.Praktikum, ins *inserted) error {
	for _, r := range rows {
		asprakID, ok := codes[core.CleanUpper(r.Get("kode_asprak"))]
		if !ok {
			continue
		}
		p, ok := praktikums[core.CleanUpper(r.Get("mk_singkat"))]
		if !ok {
			continue
		}
		id, created, err := svc.links.Link(ctx, asprakID, p.ID)
		if err != nil {
			return errors.Wrap(err, "Failed to link Asprak-Praktikum")
		}
		if created {
			ins.links = append(ins.links, id)
		}
	}
	return nil
}

func (svc *Service) loadJadwal(ctx context.Context, rows []core.Record, mks []matakuliah.WithPraktikum, ins *inserted) (int, error) {
	n := 0
	for _, r := range rows {
		name := core.CleanUpper(r.Get("nama_singkat"))
		kelas := core.CleanUpper(r.Get("kelas"))

		mk := jadwal.ResolveMataKuliah(mks, name, kelas)
		if mk == nil {
			prodi := strings.SplitN(kelas, "-", 2)[0]
			return n, errors.Errorf("Data Integrity Error: Mata Kuliah ID not found for Jadwal row '%s' (Prodi: %s)", name, prodi)
		}
		hari := core.CleanUpper(r.Get("hari"))
		if hari == "" {
			return n, errors.Errorf("Row %s is missing Hari.", kelas)
		}
		jam := r.Get("jam")
		if jam == "" {
			jam = defaultJam
		}

		j, err := svc.jadwals.Create(ctx, jadwal.Jadwal{
			IDMK:        mk.ID,
			Kelas:       kelas,
			Hari:        hari,
			Sesi:        r.Int("sesi"),
			Jam:         jam,
			Ruangan:     jadwal.CleanRoom(r.Get("ruangan")),
			TotalAsprak: r.Int("total_asprak"),
			Dosen:       core.CleanUpper(r.Get("dosen")),
		})
		if err != nil {
			return n, errors.Wrapf(err, "Jadwal Insert Error for %s", kelas)
		}
		ins.jadwal = append(ins.jadwal, j.ID)
		n++
	}
	return n, nil
}

// rollback deletes what an import created, children first. Failures are only logged.
func (svc *Service) rollback(ctx context.Context, ins inserted) {
	if len(ins.jadwal) > 0 {
		if err := svc.jadwals.Delete(ctx, ins.jadwal...); err != nil {
			svc.logger.Error("rollback: deleting jadwal", err)
		}
	}
	for _, id := range ins.links {
		if err := svc.links.Delete(ctx, id); err != nil {
			svc.logger.Error("rollback: deleting asprak_praktikum", err)
		}
	}
	if len(ins.asprak) > 0 {
		if err := svc.aspraks.Delete(ctx, ins.asprak...); err != nil {
			svc.logger.Error("rollback: deleting asprak", err)
		}
	}
	if len(ins.mataKuliah) > 0 {
		if err := svc.mataKuliahs.Delete(ctx, ins.mataKuliah...); err != nil {
			svc.logger.Error("rollback: deleting mata_kuliah", err)
		}
	}
	if len(ins.praktikum) > 0 {
		if err := svc.praktikums.Delete(ctx, ins.praktikum...); err != nil {
			svc.logger.Error("rollback: deleting praktikum", err)
		}
	}
}

// Export collects the praktikum of a term with their mata kuliah, plotted aspraks and jadwal.
func (svc *Service) Export(ctx context.Context, term string) (Dataset, error) {
	term = core.CleanString(term)
	if term == "" {
		return Dataset{}, core.NewValidationError(
			errors.New("Term parameter is required"),
			core.FieldError{Field: "term", Error: "this field is required"},
		)
	}
	d := newDataset()

	ps, err := svc.praktikums.QueryByTerm(ctx, term)
	if err != nil {
		return Dataset{}, errors.Wrap(err, "querying praktikum")
	}
	if len(ps) == 0 {
		return d, nil
	}
	for _, p := range ps {
		d.Praktikum = append(d.Praktikum, PraktikumRow{NamaSingkat: p.Nama, TahunAjaran: p.TahunAjaran})
	}

	mks, err := svc.mataKuliahs.QueryByTerm(ctx, term)
	if err != nil {
		return Dataset{}, errors.Wrap(err, "querying mata kuliah")
	}
	for _, mk := range mks {
		d.MataKuliah = append(d.MataKuliah, MataKuliahRow{
			MKSingkat:    mk.Praktikum.Nama,
			ProgramStudi: mk.ProgramStudi,
			NamaLengkap:  mk.NamaLengkap,
			DosenKoor:    mk.DosenKoor,
		})
	}

	items, err := svc.allLinks(ctx, term)
	if err != nil {
		return Dataset{}, err
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		d.AsprakPraktikum = append(d.AsprakPraktikum, LinkRow{KodeAsprak: it.Asprak.Kode, MKSingkat: it.Praktikum.Nama})
		if seen[it.Asprak.ID] {
			continue
		}
		seen[it.Asprak.ID] = true
		d.Asprak = append(d.Asprak, AsprakRow{
			NIM:         it.Asprak.NIM,
			NamaLengkap: it.Asprak.NamaLengkap,
			Kode:        it.Asprak.Kode,
			Angkatan:    it.Asprak.Angkatan,
		})
	}

	js, err := svc.jadwals.QueryByTerm(ctx, term)
	if err != nil {
		return Dataset{}, errors.Wrap(err, "querying jadwal")
	}
	for _, j := range js {
		d.Jadwal = append(d.Jadwal, JadwalRow{
			Kelas:       j.Kelas,
			NamaSingkat: j.MataKuliah.Praktikum.Nama,
			Hari:        j.Hari,
			Sesi:        j.Sesi,
			Jam:         j.Jam,
			Ruangan:     j.Ruangan,
			TotalAsprak: j.TotalAsprak,
			Dosen:       j.Dosen,
		})
	}
	return d, nil
}

// allLinks pages through every assignment of a term.
func (svc *Service) allLinks(ctx context.Context, term string) ([]plotting.Item, error) {
	var all []plotting.Item
	for page := 1; ; page++ {
		items, total, err := svc.links.Query(ctx, plotting.ListFilter{
			Term: term,
			Page: core.NewPage(page, plotting.DefaultPageSize, plotting.DefaultPageSize),
		})
		if err != nil {
			return nil, errors.Wrap(err, "querying plotting")
		}
		all = append(all, items...)
		if len(items) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

// Clear deletes every praktikum, asprak and dependent row. Pengguna and the audit log stay.
func (svc *Service) Clear(ctx context.Context) error {
	if err := svc.repo.Clear(ctx); err != nil {
		return errors.Wrap(err, "clearing database")
	}
	return nil
}
