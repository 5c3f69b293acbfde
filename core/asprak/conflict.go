package asprak

import (
	"fmt"
	"time"
)

const (
	// ActiveYearsThreshold is how many years after their angkatan an asprak stays active.
	ActiveYearsThreshold = 6
	// CodeRecycleYears is the minimum angkatan gap before a code may be reused in an import.
	CodeRecycleYears = 5
)

// NormalizeAngkatan turns 2-digit years into 4-digit ones (23 -> 2023).
func NormalizeAngkatan(angkatan int) int {
	if angkatan > 0 && angkatan < 100 {
		return angkatan + 2000
	}
	return angkatan
}

func IsActive(angkatan int, now time.Time) bool {
	return now.Year()-angkatan <= ActiveYearsThreshold
}

type ConflictCheck struct {
	HasConflict bool
	CanRecycle  bool
	Reason      string
	Owner       *Asprak
}

// CheckCodeConflict decides whether `nim` may take a code currently held by `owner` (nil when free).
func CheckCodeConflict(owner *Asprak, nim string, now time.Time) ConflictCheck {
	switch {
	case owner == nil:
		return ConflictCheck{CanRecycle: true}
	case owner.NIM == nim:
		return ConflictCheck{Owner: owner}
	case !IsActive(owner.Angkatan, now):
		return ConflictCheck{Owner: owner, CanRecycle: true, Reason: "Previous owner is inactive, code can be recycled"}
	default:
		return ConflictCheck{
			HasConflict: true,
			Owner:       owner,
			Reason:      "Code is currently assigned to active user: " + owner.NamaLengkap,
		}
	}
}

func ConflictMessage(kode string, owner Asprak) string {
	return fmt.Sprintf(
		"CONFLICT: Code '%s' is currently assigned to %s (%s) who is still active. "+
			"Codes can only be recycled after the owner becomes inactive.",
		kode, owner.NamaLengkap, owner.NIM,
	)
}

// ExpiredCode is the code given to a recycled code's previous owner.
func ExpiredCode(owner Asprak) string {
	id := owner.ID
	if len(id) > 4 {
		id = id[:4]
	}
	return fmt.Sprintf("%s_EXPIRED_%s", owner.Kode, id)
}
