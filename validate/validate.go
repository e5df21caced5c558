// Package validate reconciles candidate tables extracted by different
// backends into one deduplicated, best-effort-correct list. Similar
// candidates are grouped transitively and the highest-scoring member
// of each group wins.
package validate

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/hazyhaar/docstruct/document"
)

// methodBonus ranks extraction strategies: bordered/native strategies
// over stream heuristics over generic text-layer geometry.
var methodBonus = map[string]float64{
	"pdf_grid":   30,
	"xlsx_sheet": 30,
	"docx_table": 25,
	"odt_table":  25,
	"csv":        25,
	"pptx_slide": 20,
	"html_table": 15,
	"pdf_stream": 15,
	"pdf_text":   5,
}

// Validator groups and scores candidate tables.
type Validator struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate takes every candidate produced for one file and returns the
// selected representatives. It is deterministic: the same input yields
// the same selection and the same confidence scores.
func (v *Validator) Validate(candidates []document.Table) []document.Table {
	if len(candidates) == 0 {
		return nil
	}

	methods := map[string]bool{}
	for _, t := range candidates {
		methods[t.Method] = true
	}

	// A single backend cannot be cross-checked; its tables pass
	// through marked single-method.
	if len(methods) == 1 {
		out := make([]document.Table, len(candidates))
		for i, t := range candidates {
			t.Status = document.StatusSingleMethod
			t.Index = i
			t.BuildCells()
			out[i] = t
		}
		return out
	}

	groups := v.group(candidates)

	var out []document.Table
	for _, members := range groups {
		best := members[0]
		bestScore := score(candidates[best])
		for _, m := range members[1:] {
			if s := score(candidates[m]); s > bestScore {
				best, bestScore = m, s
			}
		}

		winner := candidates[best]
		winner.Confidence = minF(1.0, bestScore/500.0)
		if len(members) > 1 {
			winner.Status = document.StatusValidated
		} else {
			winner.Status = document.StatusSingleExtraction
		}
		winner.Index = len(out)
		winner.BuildCells()
		v.logger.Debug("table selected",
			"group_size", len(members),
			"method", winner.Method,
			"score", bestScore,
			"status", winner.Status)
		out = append(out, winner)
	}
	return out
}

// group runs pairwise similarity and merges transitively via
// union-find. Groups come back ordered by their smallest member index
// so the output is stable.
func (v *Validator) group(tables []document.Table) [][]int {
	parent := make([]int, len(tables))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			if rb < ra {
				ra, rb = rb, ra
			}
			parent[rb] = ra
		}
	}

	for i := 0; i < len(tables); i++ {
		for j := i + 1; j < len(tables); j++ {
			if similar(&tables[i], &tables[j]) {
				union(i, j)
			}
		}
	}

	byRoot := map[int][]int{}
	var roots []int
	for i := range tables {
		r := find(i)
		if _, seen := byRoot[r]; !seen {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}
	sort.Ints(roots)

	groups := make([][]int, 0, len(roots))
	for _, r := range roots {
		groups = append(groups, byRoot[r])
	}
	return groups
}

// similar is the pairwise grouping heuristic. The bare identical
// first-cell shortcut is known to false-positive on shared labels like
// "Total", so it additionally requires header overlap or an equal
// column count.
func similar(a, b *document.Table) bool {
	if intAbs(len(a.Rows)-len(b.Rows)) <= 2 && intAbs(len(a.Headers)-len(b.Headers)) <= 2 {
		return true
	}
	if fc := a.FirstCell(); fc != "" && fc == b.FirstCell() {
		if headerOverlap(a.Headers, b.Headers) >= 0.5 || len(a.Headers) == len(b.Headers) {
			return true
		}
	}
	return headerOverlap(a.Headers, b.Headers) >= 0.5
}

// headerOverlap is |intersection| / |smaller set|, case-insensitive.
func headerOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := map[string]bool{}
	for _, h := range a {
		setA[strings.ToLower(strings.TrimSpace(h))] = true
	}
	setB := map[string]bool{}
	for _, h := range b {
		setB[strings.ToLower(strings.TrimSpace(h))] = true
	}
	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	if smaller == 0 {
		return 0
	}
	inter := 0
	for h := range setA {
		if setB[h] {
			inter++
		}
	}
	return float64(inter) / float64(smaller)
}

// score rates one candidate: rows and headers dominate, numeric
// content earns a flat bonus, and the extraction method contributes a
// fixed preference.
func score(t document.Table) float64 {
	s := 10*float64(len(t.Rows)) + 5*float64(len(t.Headers)) + 2*float64(t.NonEmptyCells())
	s += methodBonus[t.Method]
	if t.HasNumericCell() {
		s += 50
	}
	return s
}

func intAbs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
