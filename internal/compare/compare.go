// Package compare contrasts two finished reports, typically two analyses of
// the same repository, check by check.
package compare

import (
	"errors"
	"sort"

	"github.com/AhmedKamal-41/ShipCheck-repo-analyzer/internal/model"
)

// ErrNoFindings is returned when either side has no success findings.
var ErrNoFindings = errors.New("report has no findings to compare")

type CheckRef struct {
	Section string            `json:"section"`
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Status  model.CheckStatus `json:"status"`
}

// CheckChange is a check present on both sides whose status or evidence
// snippet differs.
type CheckChange struct {
	Section     string            `json:"section"`
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	From        model.CheckStatus `json:"from"`
	To          model.CheckStatus `json:"to"`
	SnippetDiff []Chunk           `json:"snippet_diff,omitempty"`
}

// StatusChanged reports whether the outcome moved.
func (c CheckChange) StatusChanged() bool { return c.From != c.To }

// Improved reports a move towards pass.
func (c CheckChange) Improved() bool { return rank(c.To) > rank(c.From) }

type SectionDelta struct {
	Name      string `json:"name"`
	BaseScore *int   `json:"base_score"`
	HeadScore *int   `json:"head_score"`
	Delta     int    `json:"delta"`
}

type Comparison struct {
	BaseID     string         `json:"base_id"`
	HeadID     string         `json:"head_id"`
	BaseScore  int            `json:"base_score"`
	HeadScore  int            `json:"head_score"`
	ScoreDelta int            `json:"score_delta"`
	Sections   []SectionDelta `json:"sections"`
	Changed    []CheckChange  `json:"changed"`
	Added      []CheckRef     `json:"added"`
	Removed    []CheckRef     `json:"removed"`
	Unchanged  int            `json:"unchanged"`
}

// Improvements counts changed checks that moved towards pass.
func (c *Comparison) Improvements() int {
	n := 0
	for _, ch := range c.Changed {
		if ch.Improved() {
			n++
		}
	}
	return n
}

// Regressions counts changed checks that moved away from pass.
func (c *Comparison) Regressions() int {
	n := 0
	for _, ch := range c.Changed {
		if ch.StatusChanged() && !ch.Improved() {
			n++
		}
	}
	return n
}

func rank(s model.CheckStatus) int {
	switch s {
	case model.CheckPass:
		return 2
	case model.CheckWarn:
		return 1
	default:
		return 0
	}
}

type keyed struct {
	section string
	check   model.Check
}

// checkKey prefers the check id; names are used for checks without one.
func checkKey(section string, c model.Check) string {
	if c.ID != "" {
		return c.ID
	}
	return section + "\x00" + c.Name
}

func index(sections []model.Section) (map[string]keyed, []string) {
	m := make(map[string]keyed)
	var order []string
	for _, s := range sections {
		for _, c := range s.Checks {
			k := checkKey(s.Name, c)
			if _, dup := m[k]; !dup {
				order = append(order, k)
			}
			m[k] = keyed{section: s.Name, check: c}
		}
	}
	return m, order
}

// Reports compares base against head. Both must carry success findings.
func Reports(base, head *model.Report) (*Comparison, error) {
	bf, hf := base.Success(), head.Success()
	if bf == nil || hf == nil {
		return nil, ErrNoFindings
	}

	cmp := &Comparison{
		BaseID:    base.ID,
		HeadID:    head.ID,
		BaseScore: base.Score(),
		HeadScore: head.Score(),
		Sections:  sectionDeltas(bf.Sections, hf.Sections),
		Changed:   []CheckChange{},
		Added:     []CheckRef{},
		Removed:   []CheckRef{},
	}
	cmp.ScoreDelta = cmp.HeadScore - cmp.BaseScore

	baseIdx, baseOrder := index(bf.Sections)
	headIdx, headOrder := index(hf.Sections)

	for _, k := range headOrder {
		h := headIdx[k]
		b, ok := baseIdx[k]
		if !ok {
			cmp.Added = append(cmp.Added, ref(h))
			continue
		}
		snippet := DiffText(b.check.Evidence.Snippet, h.check.Evidence.Snippet)
		if b.check.Status == h.check.Status && len(snippet) == 0 {
			cmp.Unchanged++
			continue
		}
		cmp.Changed = append(cmp.Changed, CheckChange{
			Section:     h.section,
			ID:          h.check.ID,
			Name:        h.check.Name,
			From:        b.check.Status,
			To:          h.check.Status,
			SnippetDiff: snippet,
		})
	}
	for _, k := range baseOrder {
		if _, ok := headIdx[k]; !ok {
			cmp.Removed = append(cmp.Removed, ref(baseIdx[k]))
		}
	}
	return cmp, nil
}

func ref(k keyed) CheckRef {
	return CheckRef{Section: k.section, ID: k.check.ID, Name: k.check.Name, Status: k.check.Status}
}

// sectionDeltas lists head sections in order, then sections only in base
// sorted by name.
func sectionDeltas(base, head []model.Section) []SectionDelta {
	baseScores := make(map[string]int, len(base))
	for _, s := range base {
		baseScores[s.Name] = s.Score
	}
	seen := make(map[string]bool, len(head))
	out := make([]SectionDelta, 0, len(head))
	for _, s := range head {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		d := SectionDelta{Name: s.Name, HeadScore: model.Ptr(s.Score)}
		if bs, ok := baseScores[s.Name]; ok {
			d.BaseScore = model.Ptr(bs)
			d.Delta = s.Score - bs
		} else {
			d.Delta = s.Score
		}
		out = append(out, d)
	}
	var gone []string
	for name := range baseScores {
		if !seen[name] {
			gone = append(gone, name)
		}
	}
	sort.Strings(gone)
	for _, name := range gone {
		bs := baseScores[name]
		out = append(out, SectionDelta{Name: name, BaseScore: model.Ptr(bs), Delta: -bs})
	}
	return out
}
