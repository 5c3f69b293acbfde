package stats

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
)

const unknown = "Unknown"

type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Dashboard struct {
	Term             string   `json:"term"`
	AsprakCount      int      `json:"asprakCount"`
	JadwalCount      int      `json:"jadwalCount"`
	PelanggaranCount int      `json:"pelanggaranCount"`
	AsprakByAngkatan []Bucket `json:"asprakByAngkatan"`
	JadwalByDay      []Bucket `json:"jadwalByDay"`
}

type (
	Repository interface {
		CountPlotting(ctx context.Context, term string) (int, error)
		CountJadwal(ctx context.Context, term string) (int, error)
		CountPelanggaran(ctx context.Context, term string) (int, error)
		// AngkatanCounts counts every asprak by angkatan (0 when unknown).
		AngkatanCounts(ctx context.Context) (map[int]int, error)
		// DayCounts counts every jadwal by its raw hari value.
		DayCounts(ctx context.Context) (map[string]int, error)
	}

	Terms interface {
		Terms(ctx context.Context) ([]string, error)
	}

	Service struct {
		repo        Repository
		terms       Terms
		defaultTerm string
	}
)

func NewService(repo Repository, terms Terms, conf *core.Config) *Service {
	return &Service{repo: repo, terms: terms, defaultTerm: conf.DefaultTerm}
}

// resolveTerm picks the latest known term when none is asked for.
func (svc *Service) resolveTerm(ctx context.Context, term string) (string, error) {
	if term = core.CleanString(term); term != "" {
		return term, nil
	}
	terms, err := svc.terms.Terms(ctx)
	if err != nil {
		return "", err
	}
	if len(terms) > 0 {
		return terms[0], nil
	}
	return svc.defaultTerm, nil
}

func (svc *Service) Dashboard(ctx context.Context, term string) (Dashboard, error) {
	term, err := svc.resolveTerm(ctx, term)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{Term: term}

	if d.AsprakCount, err = svc.repo.CountPlotting(ctx, term); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting plotting")
	}
	if d.JadwalCount, err = svc.repo.CountJadwal(ctx, term); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting jadwal")
	}
	if d.PelanggaranCount, err = svc.repo.CountPelanggaran(ctx, term); err != nil {
		return Dashboard{}, errors.Wrap(err, "counting pelanggaran")
	}

	angkatan, err := svc.repo.AngkatanCounts(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting asprak by angkatan")
	}
	d.AsprakByAngkatan = angkatanBuckets(angkatan)

	days, err := svc.repo.DayCounts(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting jadwal by day")
	}
	d.JadwalByDay = dayBuckets(days)
	return d, nil
}

// angkatanBuckets sorts angkatan ascending with Unknown last.
func angkatanBuckets(counts map[int]int) []Bucket {
	years := make([]int, 0, len(counts))
	unknownCount := 0
	for y, c := range counts {
		if y <= 0 {
			unknownCount += c
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]Bucket, 0, len(years)+1)
	for _, y := range years {
		out = append(out, Bucket{Name: strconv.Itoa(y), Count: counts[y]})
	}
	if unknownCount > 0 {
		out = append(out, Bucket{Name: unknown, Count: unknownCount})
	}
	return out
}

func capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// dayBuckets merges raw hari values by capitalised name, in week order then by name.
func dayBuckets(counts map[string]int) []Bucket {
	merged := make(map[string]int, len(counts))
	for day, c := range counts {
		name := capitalize(day)
		if name == "" {
			name = unknown
		}
		merged[name] += c
	}

	order := make(map[string]int, len(core.Days))
	for i, d := range core.Days {
		order[capitalize(d)] = i
	}
	out := make([]Bucket, 0, len(merged))
	for name, c := range merged {
		out = append(out, Bucket{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iKnown := order[out[i].Name]
		oj, jKnown := order[out[j].Name]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		default:
			return out[i].Name < out[j].Name
		}
	})
	return out
}
