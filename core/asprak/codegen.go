package asprak

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/labasprak/asprak/core"
)

const (
	RuleProvided   = "Provided (CSV)"
	RuleFailed     = "FAILED"
	RuleStrategic  = "Fallback L1 (Strategic)"
	RuleFullLetter = "Fallback L2 (Full)"
)

var (
	ErrEmptyName = errors.New("name is empty")

	nonLetters = regexp.MustCompile(`[^A-Z ]`)
	spaces     = regexp.MustCompile(`\s+`)
)

// CodeResult is a generated (or claimed) code and the rule that produced it.
type CodeResult struct {
	Code string `json:"code"`
	Rule string `json:"rule"`
}

// CodeRequest is one row of a batch generation.
type CodeRequest struct {
	Name         string
	ProvidedCode string
}

// sanitizeName folds accents, upper-cases and keeps only A-Z and single spaces.
func sanitizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	s := nonLetters.ReplaceAllString(strings.ToUpper(folded), "")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func last(w string) byte { return w[len(w)-1] }

// at returns w[i], or 0 when out of range.
func at(w string, i int) byte {
	if i < len(w) {
		return w[i]
	}
	return 0
}

func code(bs ...byte) string {
	for _, b := range bs {
		if b == 0 {
			return ""
		}
	}
	return string(bs)
}

// standardCandidates are the ordered phase-1 rules for a name split into words.
func standardCandidates(words []string) []string {
	switch n := len(words); {
	case n == 1:
		w := words[0]
		return []string{
			code(at(w, 0), at(w, 1), at(w, 2)),
			code(at(w, 0), at(w, 1), at(w, 3)),
			code(at(w, 0), at(w, 2), at(w, 3)),
			code(at(w, 0), at(w, 1), last(w)),
		}
	case n == 2:
		w1, w2 := words[0], words[1]
		return []string{
			code(at(w1, 0), at(w1, 1), at(w2, 0)),
			code(at(w1, 0), at(w2, 0), at(w2, 1)),
			code(at(w1, 0), at(w2, 0), last(w2)),
			code(at(w1, 0), at(w1, 1), last(w2)),
		}
	default:
		w1, w2, w3 := words[0], words[1], words[2]
		return []string{
			code(at(w1, 0), at(w2, 0), at(w3, 0)),
			code(at(w1, 0), at(w2, 0), at(w2, 1)),
			code(at(w1, 0), at(w1, 1), at(w2, 0)),
			code(at(w1, 0), at(w2, 0), at(w3, 1)),
			code(at(w1, 0), at(w3, 0), at(w3, 1)),
			code(at(w1, 0), at(w1, 1), at(w3, 0)),
			code(at(w1, 0), at(w2, 0), last(w3)),
			code(at(w1, 0), at(w2, 1), at(w3, 0)),
		}
	}
}

// uniqueBytes keeps the first occurrence of each byte.
func uniqueBytes(bs []byte) []byte {
	seen := make(map[byte]bool, len(bs))
	out := make([]byte, 0, len(bs))
	for _, b := range bs {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}

// strategicPool takes the first, second, middle and last letters of every word.
func strategicPool(words []string) []byte {
	pool := make([]byte, 0, len(words)*4)
	for _, w := range words {
		pool = append(pool, w[0])
		if len(w) > 1 {
			pool = append(pool, w[1])
		}
		if len(w) > 2 {
			pool = append(pool, w[len(w)/2])
		}
		if len(w) > 1 {
			pool = append(pool, last(w))
		}
	}
	return uniqueBytes(pool)
}

// combinations returns every ordered 3-combination of pool, those starting with `first` first.
func combinations(pool []byte, first byte) []string {
	var head, tail []string
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			for k := j + 1; k < len(pool); k++ {
				c := string([]byte{pool[i], pool[j], pool[k]})
				if pool[i] == first {
					head = append(head, c)
				} else {
					tail = append(tail, c)
				}
			}
		}
	}
	return append(head, tail...)
}

// GenerateCode returns the first 3-letter code derived from name that is not in used.
func GenerateCode(name string, used map[string]bool) (CodeResult, error) {
	clean := sanitizeName(name)
	if clean == "" {
		return CodeResult{}, ErrEmptyName
	}
	words := strings.Fields(clean)

	n := len(words)
	if n > 3 {
		n = 3
	}
	for i, c := range standardCandidates(words) {
		if c != "" && !used[c] {
			return CodeResult{Code: c, Rule: fmt.Sprintf("Standard %d.%d", n, i+1)}, nil
		}
	}

	first := clean[0]
	for _, c := range combinations(strategicPool(words), first) {
		if !used[c] {
			return CodeResult{Code: c, Rule: RuleStrategic}, nil
		}
	}

	letters := uniqueBytes([]byte(strings.ReplaceAll(clean, " ", "")))
	for _, c := range combinations(letters, first) {
		if !used[c] {
			return CodeResult{Code: c, Rule: RuleFullLetter}, nil
		}
	}
	return CodeResult{}, errors.Errorf("no unique code available for %q", name)
}

// BatchGenerateCodes claims valid unused provided codes first, then generates the rest in order.
// Every assigned code is added to used. Failed rows get an empty code and the FAILED rule.
func BatchGenerateCodes(reqs []CodeRequest, used map[string]bool) []CodeResult {
	results := make([]CodeResult, len(reqs))
	pending := make([]int, 0, len(reqs))

	for i, r := range reqs {
		provided := strings.ToUpper(strings.TrimSpace(r.ProvidedCode))
		if core.IsValidCode(provided) && !used[provided] {
			used[provided] = true
			results[i] = CodeResult{Code: provided, Rule: RuleProvided}
			continue
		}
		pending = append(pending, i)
	}

	for _, i := range pending {
		res, err := GenerateCode(reqs[i].Name, used)
		if err != nil {
			results[i] = CodeResult{Rule: RuleFailed}
			continue
		}
		used[res.Code] = true
		results[i] = res
	}
	return results
}
